package ab1805

const (
	// 7-bit I2C address. Hardwired in the part, not strappable.
	Address = 0x69

	// --- Time (BCD) ---
	regHundredth = 0x00
	regSecond    = 0x01
	regMinute    = 0x02
	regHour      = 0x03
	regDate      = 0x04
	regMonth     = 0x05
	regYear      = 0x06
	regWeekday   = 0x07

	// --- Alarm (BCD) ---
	regHundredthAlarm = 0x08
	regSecondAlarm    = 0x09
	regMinuteAlarm    = 0x0A
	regHourAlarm      = 0x0B
	regDateAlarm      = 0x0C
	regMonthAlarm     = 0x0D
	regWeekdayAlarm   = 0x0E

	// --- Status (0x0F) ---
	regStatus        = 0x0F
	statusCentury    = 0x80
	statusBattery    = 0x40
	statusWDT        = 0x20 // watchdog fired
	statusBrownout   = 0x10
	statusTimer      = 0x08 // countdown reached zero
	statusAlarm      = 0x04 // alarm match
	statusExt2       = 0x02
	statusExt1       = 0x01
	statusDefault    = 0x00
	regCtrl1         = 0x10
	ctrl1Stop        = 0x80
	ctrl1Mode12      = 0x40
	ctrl1OutB        = 0x20
	ctrl1Out         = 0x10
	ctrl1RSP         = 0x08
	ctrl1ARST        = 0x04
	ctrl1PWR2        = 0x02
	ctrl1WRTC        = 0x01 // 1 = time registers writable; cleared once set
	ctrl1Default     = 0x13 // OUT | PWR2 | WRTC
	regCtrl2         = 0x11
	ctrl2OUT2SMask   = 0x1C
	ctrl2OUT2SnIRQ   = 0x00
	ctrl2OUT2SSQW    = 0x04
	ctrl2OUT2SnAIRQ  = 0x0C
	ctrl2OUT2STIRQ   = 0x10
	ctrl2OUT2SnTIRQ  = 0x14
	ctrl2OUT2SSleep  = 0x18
	ctrl2OUT2SOutB   = 0x1C
	ctrl2OUT1SMask   = 0x03
	ctrl2OUT1SnIRQ   = 0x00 // nIRQ if any interrupt enabled, else OUT
	ctrl2OUT1SSQW    = 0x01 // SQW if SQWE, else OUT
	ctrl2OUT1SSQWIRQ = 0x02
	ctrl2OUT1SnAIRQ  = 0x03 // nAIRQ if AIE, else OUT
	ctrl2Default     = 0x3C
	regIntMask       = 0x12
	intMaskCEB       = 0x80
	intMaskIM        = 0x60
	intMaskBLIE      = 0x10
	intMaskTIE       = 0x08
	intMaskAIE       = 0x04
	intMaskEX2E      = 0x02
	intMaskEX1E      = 0x01
	intMaskDefault   = 0xE0
	regSQW           = 0x13
	sqwEnable        = 0x80
	sqwDefault       = 0x26
	regCalXT         = 0x14
	regCalRCHigh     = 0x15
	regCalRCLow      = 0x16

	// --- Sleep control (0x17) ---
	regSleepCtrl      = 0x17
	sleepSLP          = 0x80
	sleepSLRES        = 0x40 // nRST low while asleep
	sleepEX2P         = 0x20
	sleepEX1P         = 0x10
	sleepSLST         = 0x08 // read-only: sleep has occurred
	sleepSLTOMask     = 0x07
	sleepDefault      = 0x00
	regTimerCtrl      = 0x18
	timerCtrlTE       = 0x80
	timerCtrlTM       = 0x40
	timerCtrlTRPT     = 0x20
	timerCtrlRPTMask  = 0x1C
	timerCtrlTFSMask  = 0x03
	timerCtrlTFSFast  = 0x00
	timerCtrlTFS64    = 0x01
	timerCtrlTFS1     = 0x02
	timerCtrlTFS1_60  = 0x03
	timerCtrlDefault  = 0x23
	regTimer          = 0x19
	timerDefault      = 0x00
	regTimerInitial   = 0x1A
	timerInitDefault  = 0x00
	regWDT            = 0x1B
	wdtReset          = 0x80 // reset (1) vs WIRQ (0)
	wdtWRB16Hz        = 0x00
	wdtWRB4Hz         = 0x01
	wdtWRB1Hz         = 0x02
	wdtWRBQuarterHz   = 0x03
	wdtDefault        = 0x00
	regOscCtrl        = 0x1C
	oscCtrlOSEL       = 0x80
	oscCtrlACAL       = 0x60
	oscCtrlAOS        = 0x10
	oscCtrlFOS        = 0x08
	oscCtrlPWGT       = 0x04 // I/O interface disabled in sleep
	oscCtrlOFIE       = 0x02
	oscCtrlACIE       = 0x01
	oscCtrlDefault    = 0x00
	regOscStatus      = 0x1D
	oscStatusXTCAL    = 0xC0
	oscStatusLKO2     = 0x20
	oscStatusOMODE    = 0x10 // read-only: 1 = RC oscillator
	oscStatusOF       = 0x02
	oscStatusACF      = 0x01
	regConfigKey      = 0x1F
	keyOscCtrl        = 0xA1
	keySoftwareReset  = 0x3C
	keyOther          = 0x9D // TRICKLE, BREF, AFCTRL, BATMODE, OCTRL
	regTrickle        = 0x20
	trickleDefault    = 0x00
	trickleTCSMask    = 0xF0
	trickleTCSEnable  = 0xA0
	trickleDiodeMask  = 0x0C
	trickleRoutMask   = 0x03
	regBrefCtrl       = 0x21
	brefDefault       = 0xF0
	regAFCtrl         = 0x26
	afctrlEnable      = 0xA0
	afctrlDefault     = 0x00
	regBatmodeIO      = 0x27
	batmodeIOBM       = 0x80
	batmodeDefault    = 0x80
	regID0            = 0x28
	id0AB18xx         = 0x18
	regID1            = 0x29
	id1ABxx05         = 0x05
	regID2            = 0x2A
	regID3            = 0x2B
	regID4            = 0x2C
	regID5            = 0x2D
	regID6            = 0x2E
	regAnalogStatus   = 0x2F
	astatBBOD         = 0x80 // VBAT above BREF
	astatBMIN         = 0x40 // VBAT above 1.2 V
	astatVINIT        = 0x02
	regOutputCtrl     = 0x30
	octrlWDBM         = 0x80
	octrlEXBM         = 0x40
	octrlWDDS         = 0x20
	octrlEXDS         = 0x10
	octrlRSEN         = 0x08
	octrlO4EN         = 0x04
	octrlO3EN         = 0x02
	octrlO1EN         = 0x01 // FOUT/nIRQ enabled in sleep
	octrlDefault      = 0x00
	regExtAddr        = 0x3F
	extAddrO4MB       = 0x80
	extAddrBPOL       = 0x40
	extAddrWDIN       = 0x20
	extAddrEXIN       = 0x10
	extAddrXADA       = 0x04 // selects upper 128 bytes of alternate RAM
	extAddrXADS       = 0x03
	regRAM            = 0x40
	regAltRAM         = 0x80
)

// Trickle charger diode selection.
const (
	TrickleDiodeNone     byte = 0x00
	TrickleDiodeSchottky byte = 0x04 // 0.3 V drop
	TrickleDiodeStandard byte = 0x08 // 0.6 V drop
)

// Trickle charger output resistor.
const (
	TrickleRoutDisable byte = 0x00
	TrickleRout3K      byte = 0x01
	TrickleRout6K      byte = 0x02
	TrickleRout11K     byte = 0x03
)
