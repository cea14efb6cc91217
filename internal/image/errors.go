package image

import "errors"

var (
	ErrUnknownDeviceName = errors.New("image: cannot infer identity from device name")
	ErrFieldWidth        = errors.New("image: unsupported field width")
	ErrBufferSize        = errors.New("image: buffer size does not match image size")
	ErrUnresolvedSdoVar  = errors.New("image: unresolved sdo config value")
	ErrSdoOverride       = errors.New("image: sdo override requires a single-slave component")
	ErrRepeatCount       = errors.New("image: repeat count must be at least 1")
)
