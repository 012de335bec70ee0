//go:build !linux && !baremetal

package platform

import (
	"rtcnode-go/errcode"
	"rtcnode-go/types"
)

// Open is only implemented on Linux and RP2 targets.
func Open(types.PlatformConfig) (*Host, error) {
	return nil, &errcode.E{C: errcode.Unsupported, Op: "open", Msg: "no platform bindings for this OS"}
}
