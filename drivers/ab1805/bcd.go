package ab1805

import "time"

// CalendarTime is the broken-down form stored in the time registers.
// Month is 0-based and Year is an offset from 2000, so the chip covers
// 2000..2099.
type CalendarTime struct {
	Second  int
	Minute  int
	Hour    int // 24-hour
	Day     int // 1..31
	Month   int // 0..11
	Year    int // 0..99
	Weekday int // 0 = Sunday
}

// CalendarOf converts t (in UTC) to a CalendarTime.
func CalendarOf(t time.Time) CalendarTime {
	t = t.UTC()
	return CalendarTime{
		Second:  t.Second(),
		Minute:  t.Minute(),
		Hour:    t.Hour(),
		Day:     t.Day(),
		Month:   int(t.Month()) - 1,
		Year:    t.Year() - 2000,
		Weekday: int(t.Weekday()),
	}
}

// Time returns the UTC instant; Weekday is ignored.
func (c CalendarTime) Time() time.Time {
	return time.Date(2000+c.Year, time.Month(c.Month+1), c.Day, c.Hour, c.Minute, c.Second, 0, time.UTC)
}

// ValueToBCD packs 0..99 into two BCD digits. Larger values wrap modulo 100
// and negative values encode as 0x00.
func ValueToBCD(v int) byte {
	if v < 0 {
		return 0
	}
	return byte((v/10)%10)<<4 | byte(v%10)
}

// BCDToValue unpacks two BCD digits.
func BCDToValue(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}

// EncodeTime packs c in register order: sec, min, hour, date, month,
// [year], weekday. The result is 7 bytes with the year, 6 without.
func EncodeTime(c CalendarTime, includeYear bool) []byte {
	b := make([]byte, 0, 7)
	return appendTime(b, c, includeYear)
}

func appendTime(b []byte, c CalendarTime, includeYear bool) []byte {
	b = append(b,
		ValueToBCD(c.Second),
		ValueToBCD(c.Minute),
		ValueToBCD(c.Hour),
		ValueToBCD(c.Day),
		ValueToBCD(c.Month+1),
	)
	if includeYear {
		b = append(b, ValueToBCD(c.Year))
	}
	return append(b, ValueToBCD(c.Weekday))
}

// DecodeTime is the inverse of EncodeTime. Control bits sharing the time
// registers are masked off.
func DecodeTime(b []byte, includeYear bool) CalendarTime {
	var raw [7]byte
	copy(raw[:], b)
	c := CalendarTime{
		Second: BCDToValue(raw[0] & 0x7F),
		Minute: BCDToValue(raw[1] & 0x7F),
		Hour:   BCDToValue(raw[2] & 0x3F),
		Day:    BCDToValue(raw[3] & 0x3F),
		Month:  BCDToValue(raw[4]&0x1F) - 1,
	}
	if includeYear {
		c.Year = BCDToValue(raw[5])
		c.Weekday = BCDToValue(raw[6] & 0x07)
	} else {
		c.Weekday = BCDToValue(raw[5] & 0x07)
	}
	return c
}
