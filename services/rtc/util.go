package rtc

import (
	"encoding/json"
	"strings"
	"time"

	"rtcnode-go/drivers/ab1805"
	"rtcnode-go/errcode"
	"rtcnode-go/types"
)

// decodeJSON accepts T itself, *T, JSON text, or anything JSON can carry
// (maps from YAML or the console).
func decodeJSON[T any](src any, dst *T) error {
	switch v := src.(type) {
	case nil:
		return nil
	case T:
		*dst = v
		return nil
	case *T:
		if v != nil {
			*dst = *v
		}
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}

func decodePayload[T any](verb string, src any, dst *T) error {
	if err := decodeJSON(src, dst); err != nil {
		return errcode.Wrap(errcode.InvalidPayload, verb, err)
	}
	return nil
}

// parseTrickle maps a named charger setting to the TRICKLE register value.
// An empty diode or rout disables charging.
func parseTrickle(c types.TrickleConfig) (byte, error) {
	var diode, rout byte
	switch strings.ToLower(c.Diode) {
	case "", "none", "off":
		return 0, nil
	case "schottky":
		diode = ab1805.TrickleDiodeSchottky
	case "standard":
		diode = ab1805.TrickleDiodeStandard
	default:
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "trickle", Msg: "unknown diode " + c.Diode}
	}
	switch strings.ToLower(c.Rout) {
	case "", "off", "disable":
		return 0, nil
	case "3k":
		rout = ab1805.TrickleRout3K
	case "6k":
		rout = ab1805.TrickleRout6K
	case "11k":
		rout = ab1805.TrickleRout11K
	default:
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "trickle", Msg: "unknown rout " + c.Rout}
	}
	return diode | rout, nil
}

func drainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}
