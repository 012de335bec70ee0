// Package config loads the node's YAML configuration and publishes each
// top-level key retained on "config/<key>".
package config

import (
	"errors"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"rtcnode-go/bus"
	"rtcnode-go/errcode"
	"rtcnode-go/types"
)

const configPrefix = "config"

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// File is the typed view of a configuration document. Keys without a
// typed field are still published, as decoded YAML values.
type File struct {
	RTC      types.RTCConfig
	Platform types.PlatformConfig
	Raw      map[string]any
}

// Parse decodes a YAML document. Known keys are decoded into their
// types; everything else stays generic.
func Parse(raw []byte) (File, error) {
	var nodes map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &nodes); err != nil {
		return File{}, errcode.Wrap(errcode.InvalidPayload, "config parse", err)
	}
	if nodes == nil {
		return File{}, &errcode.E{C: errcode.InvalidPayload, Op: "config parse", Msg: "config is not a YAML mapping"}
	}
	f := File{Raw: make(map[string]any, len(nodes))}
	for k, n := range nodes {
		var err error
		switch k {
		case "rtc":
			err = n.Decode(&f.RTC)
			f.Raw[k] = f.RTC
		case "platform":
			err = n.Decode(&f.Platform)
			f.Raw[k] = f.Platform
		default:
			var v any
			err = n.Decode(&v)
			f.Raw[k] = v
		}
		if err != nil {
			return File{}, errcode.Wrap(errcode.InvalidPayload, "config "+k, err)
		}
	}
	if f.RTC.MaintenanceMs == 0 {
		f.RTC.MaintenanceMs = types.DefaultMaintenanceMs
		if _, ok := f.Raw["rtc"]; ok {
			f.Raw["rtc"] = f.RTC
		}
	}
	return f, nil
}

// Load reads path, or the embedded config for device when path is empty.
func Load(path, device string) (File, error) {
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return File{}, err
		}
		return Parse(raw)
	}
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return File{}, errors.New("no embedded config for device: " + device)
	}
	return Parse(raw)
}

// Publish sends every key of f retained, in key order.
func Publish(conn *bus.Connection, f File) {
	for _, k := range slices.Sorted(maps.Keys(f.Raw)) {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), f.Raw[k], true))
	}
}
