// Package beckhoff is the static catalog of Beckhoff EK/EL terminal
// schemas: pure layout data, no logic. Identities are inferred from the
// terminal names by the descriptor compiler.
package beckhoff

import "github.com/fieldio/ecatplc/internal/image"

// EK1100 is the EtherCAT coupler; it maps no process data.
func EK1100() image.Schema { return image.Schema{Name: "EK1100"} }

// EK1110 is the EtherCAT extension.
func EK1110() image.Schema { return image.Schema{Name: "EK1110"} }

// EK1818 couples the bus and carries 8 digital inputs and 4 outputs.
func EK1818() image.Schema {
	return image.Schema{
		Name: "EK1818",
		Fields: []image.Field{
			{Name: "input", Bits: 8, Entry: &image.Entry{Index: 0x6000, SubIndex: 1}},
			{Name: "output", Bits: 8, Entry: &image.Entry{Index: 0x7000, SubIndex: 1}},
		},
	}
}

// EL1008 has 8 digital inputs.
func EL1008() image.Schema {
	return image.Schema{
		Name: "EL1008",
		Fields: []image.Field{
			{Name: "input", Bits: 8, Entry: &image.Entry{Index: 0x6000, SubIndex: 1}},
		},
	}
}

// EL1018 has 8 fast digital inputs.
func EL1018() image.Schema {
	return image.Schema{
		Name: "EL1018",
		Fields: []image.Field{
			{Name: "input", Bits: 8, Entry: &image.Entry{Index: 0x6000, SubIndex: 1}},
		},
	}
}

// EL1502 is a 2-channel up counter with explicit PDO assignment.
func EL1502() image.Schema {
	return image.Schema{
		Name: "EL1502",
		Fields: []image.Field{
			{Name: "status_ch1", Bits: 16, Entry: &image.Entry{Pdo: 0x1A00, Index: 0x6000, SubIndex: 1}},
			{Name: "value_ch1", Bits: 32, Entry: &image.Entry{Pdo: 0x1A00, Index: 0x6000, SubIndex: 17}},
			{Name: "status_ch2", Bits: 16, Entry: &image.Entry{Pdo: 0x1A01, Index: 0x6010, SubIndex: 1}},
			{Name: "value_ch2", Bits: 32, Entry: &image.Entry{Pdo: 0x1A01, Index: 0x6010, SubIndex: 17}},
			{Name: "control_ch1", Bits: 16, Entry: &image.Entry{Pdo: 0x1600, Index: 0x7000, SubIndex: 1}},
			{Name: "setvalue_ch1", Bits: 32, Entry: &image.Entry{Pdo: 0x1600, Index: 0x7000, SubIndex: 17}},
			{Name: "control_ch2", Bits: 16, Entry: &image.Entry{Pdo: 0x1601, Index: 0x7010, SubIndex: 1}},
			{Name: "setvalue_ch2", Bits: 32, Entry: &image.Entry{Pdo: 0x1601, Index: 0x7010, SubIndex: 17}},
		},
		SyncManagers: []image.SyncManagerSpec{
			{Index: 3, Dir: image.Input, Pdos: []uint16{0x1A00, 0x1A01}},
			{Index: 2, Dir: image.Output, Pdos: []uint16{0x1600, 0x1601}},
		},
	}
}

// EL1859 has 8 digital inputs and 8 outputs.
func EL1859() image.Schema {
	return image.Schema{
		Name: "EL1859",
		Fields: []image.Field{
			{Name: "input", Bits: 8, Entry: &image.Entry{Index: 0x6000, SubIndex: 1}},
			{Name: "output", Bits: 8, Entry: &image.Entry{Index: 0x7080, SubIndex: 1}},
		},
	}
}

// EL2008 has 8 digital outputs.
func EL2008() image.Schema {
	return image.Schema{
		Name: "EL2008",
		Fields: []image.Field{
			{Name: "output", Bits: 8, Entry: &image.Entry{Index: 0x7000, SubIndex: 1}},
		},
	}
}

// EL2622 has 2 relay outputs.
func EL2622() image.Schema {
	return image.Schema{
		Name: "EL2622",
		Fields: []image.Field{
			{Name: "output", Bits: 8, Entry: &image.Entry{Index: 0x7000, SubIndex: 1}},
		},
	}
}

// EL3104 has 4 differential analog inputs.
func EL3104() image.Schema {
	return image.Schema{
		Name: "EL3104",
		Fields: []image.Field{
			{Name: "ch1_status", Bits: 16, Entry: &image.Entry{Index: 0x6000, SubIndex: 1}},
			{Name: "ch1", Bits: 16, Entry: &image.Entry{Index: 0x6000, SubIndex: 17}},
			{Name: "ch2_status", Bits: 16, Entry: &image.Entry{Index: 0x6010, SubIndex: 1}},
			{Name: "ch2", Bits: 16, Entry: &image.Entry{Index: 0x6010, SubIndex: 17}},
			{Name: "ch3_status", Bits: 16, Entry: &image.Entry{Index: 0x6020, SubIndex: 1}},
			{Name: "ch3", Bits: 16, Entry: &image.Entry{Index: 0x6020, SubIndex: 17}},
			{Name: "ch4_status", Bits: 16, Entry: &image.Entry{Index: 0x6030, SubIndex: 1}},
			{Name: "ch4", Bits: 16, Entry: &image.Entry{Index: 0x6030, SubIndex: 17}},
		},
	}
}

// EL3152 has 2 analog inputs with explicit PDO assignment.
func EL3152() image.Schema {
	return image.Schema{
		Name: "EL3152",
		Fields: []image.Field{
			{Name: "ch1_status", Bits: 16, Entry: &image.Entry{Pdo: 0x1A02, Index: 0x6000, SubIndex: 1}},
			{Name: "ch1", Bits: 16, Entry: &image.Entry{Pdo: 0x1A02, Index: 0x6000, SubIndex: 17}},
			{Name: "ch2_status", Bits: 16, Entry: &image.Entry{Pdo: 0x1A04, Index: 0x6010, SubIndex: 1}},
			{Name: "ch2", Bits: 16, Entry: &image.Entry{Pdo: 0x1A04, Index: 0x6010, SubIndex: 17}},
		},
		SyncManagers: []image.SyncManagerSpec{
			{Index: 3, Dir: image.Input, Pdos: []uint16{0x1A02, 0x1A04}},
		},
	}
}

// EL4132 has 2 analog outputs.
func EL4132() image.Schema {
	return image.Schema{
		Name: "EL4132",
		Fields: []image.Field{
			{Name: "ch1", Bits: 16, Entry: &image.Entry{Index: 0x3001, SubIndex: 1}},
			{Name: "ch2", Bits: 16, Entry: &image.Entry{Index: 0x3002, SubIndex: 1}},
		},
	}
}

// EL5002 is a 2-channel SSI encoder interface.
func EL5002() image.Schema {
	return image.Schema{
		Name: "EL5002",
		Fields: []image.Field{
			{Name: "status_ch1", Bits: 16, Entry: &image.Entry{Pdo: 0x1A00, Index: 0x6000, SubIndex: 1}},
			{Name: "value_ch1", Bits: 32, Entry: &image.Entry{Pdo: 0x1A00, Index: 0x6000, SubIndex: 11}},
			{Name: "status_ch2", Bits: 16, Entry: &image.Entry{Pdo: 0x1A01, Index: 0x6010, SubIndex: 1}},
			{Name: "value_ch2", Bits: 32, Entry: &image.Entry{Pdo: 0x1A01, Index: 0x6010, SubIndex: 11}},
		},
		SyncManagers: []image.SyncManagerSpec{
			{Index: 3, Dir: image.Input, Pdos: []uint16{0x1A00, 0x1A01}},
		},
	}
}

// EL5032 is a 2-channel EnDat encoder interface; it needs the bus watchdog.
func EL5032() image.Schema {
	return image.Schema{
		Name: "EL5032",
		Fields: []image.Field{
			{Name: "status_ch1", Bits: 16, Entry: &image.Entry{Pdo: 0x1A00, Index: 0x6000, SubIndex: 1}},
			{Name: "value_ch1", Bits: 64, Entry: &image.Entry{Pdo: 0x1A00, Index: 0x6000, SubIndex: 11}},
			{Name: "status_ch2", Bits: 16, Entry: &image.Entry{Pdo: 0x1A01, Index: 0x6010, SubIndex: 1}},
			{Name: "value_ch2", Bits: 64, Entry: &image.Entry{Pdo: 0x1A01, Index: 0x6010, SubIndex: 11}},
		},
		SyncManagers: []image.SyncManagerSpec{
			{Index: 3, Dir: image.Input, Pdos: []uint16{0x1A00, 0x1A01}},
		},
		Watchdog: &image.WatchdogSpec{Divider: 1, Intervals: 1},
	}
}

// EL7041Velocity is the EL7041 stepper terminal in velocity mode.
func EL7041Velocity() image.Schema {
	return image.Schema{
		Name: "EL7041_Velocity",
		Fields: []image.Field{
			{Name: "enc_status", Bits: 16, Entry: &image.Entry{Pdo: 0x1A01, Index: 0x6000, SubIndex: 1}},
			{Name: "enc_counter", Bits: 32, Entry: &image.Entry{Pdo: 0x1A01, Index: 0x6000, SubIndex: 0x11}},
			{Name: "enc_latch", Bits: 32, Entry: &image.Entry{Pdo: 0x1A01, Index: 0x6000, SubIndex: 0x12}},
			{Name: "mot_status", Bits: 16, Entry: &image.Entry{Pdo: 0x1A03, Index: 0x6010, SubIndex: 1}},
			{Name: "info_data1", Bits: 16, Entry: &image.Entry{Pdo: 0x1A04, Index: 0x6010, SubIndex: 0x11}},
			{Name: "info_data2", Bits: 16, Entry: &image.Entry{Pdo: 0x1A04, Index: 0x6010, SubIndex: 0x12}},
			{Name: "mot_position", Bits: 32, Entry: &image.Entry{Pdo: 0x1A07, Index: 0x6010, SubIndex: 0x14}},
			{Name: "enc_control", Bits: 16, Entry: &image.Entry{Pdo: 0x1601, Index: 0x7000, SubIndex: 1}},
			{Name: "enc_set_counter", Bits: 32, Entry: &image.Entry{Pdo: 0x1601, Index: 0x7000, SubIndex: 0x11}},
			{Name: "mot_control", Bits: 16, Entry: &image.Entry{Pdo: 0x1602, Index: 0x7010, SubIndex: 1}},
			{Name: "mot_velocity", Bits: 16, Entry: &image.Entry{Pdo: 0x1604, Index: 0x7010, SubIndex: 0x21}},
		},
		SyncManagers: []image.SyncManagerSpec{
			{Index: 3, Dir: image.Input, Pdos: []uint16{0x1A01, 0x1A03, 0x1A04, 0x1A07}},
			{Index: 2, Dir: image.Output, Pdos: []uint16{0x1601, 0x1602, 0x1604}},
		},
	}
}

// EL7211Velocity is the EL7211-0010 servo terminal in velocity mode; it
// runs on the distributed clock.
func EL7211Velocity() image.Schema {
	return image.Schema{
		Name: "EL7211_Velocity",
		Identity: &image.Identity{VendorID: 2, ProductCode: 7211<<16 | 0x3052},
		Fields: []image.Field{
			{Name: "act_pos", Bits: 32, Entry: &image.Entry{Pdo: 0x1A00, Index: 0x6000, SubIndex: 0x11}},
			{Name: "mot_status", Bits: 16, Entry: &image.Entry{Pdo: 0x1A01, Index: 0x6010, SubIndex: 1}},
			{Name: "act_velo", Bits: 32, Entry: &image.Entry{Pdo: 0x1A02, Index: 0x6010, SubIndex: 7}},
			{Name: "act_torq", Bits: 16, Entry: &image.Entry{Pdo: 0x1A03, Index: 0x6010, SubIndex: 8}},
			{Name: "info_data1", Bits: 16, Entry: &image.Entry{Pdo: 0x1A04, Index: 0x6010, SubIndex: 0x12}},
			{Name: "info_data2", Bits: 16, Entry: &image.Entry{Pdo: 0x1A05, Index: 0x6010, SubIndex: 0x13}},
			{Name: "drag_error", Bits: 32, Entry: &image.Entry{Pdo: 0x1A06, Index: 0x6010, SubIndex: 6}},
			{Name: "mot_curr_mode", Bits: 8, Entry: &image.Entry{Pdo: 0x1A0E, Index: 0x6010, SubIndex: 3}},
			{Name: "mot_control", Bits: 16, Entry: &image.Entry{Pdo: 0x1600, Index: 0x7010, SubIndex: 1}},
			{Name: "target_velo", Bits: 32, Entry: &image.Entry{Pdo: 0x1601, Index: 0x7010, SubIndex: 6}},
			{Name: "mot_mode", Bits: 8, Entry: &image.Entry{Pdo: 0x1608, Index: 0x7010, SubIndex: 3}},
		},
		SyncManagers: []image.SyncManagerSpec{
			{Index: 3, Dir: image.Input, Pdos: []uint16{0x1A00, 0x1A01, 0x1A02, 0x1A03, 0x1A04, 0x1A05, 0x1A06, 0x1A0E}},
			{Index: 2, Dir: image.Output, Pdos: []uint16{0x1600, 0x1601, 0x1608}},
		},
		DC: &image.DCSpec{
			AssignActivate: 0x700,
			CycleTime0:     2000000,
			ShiftTime0:     30000,
			CycleTime1:     2000000,
			ShiftTime1:     1000,
		},
	}
}
