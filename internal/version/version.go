package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

const defaultModule = "pkt.systems/charcat"

// buildVersion is set via -ldflags "-X pkt.systems/charcat/internal/version.buildVersion=...".
var buildVersion = ""

// Info describes the running binary.
type Info struct {
	Module   string
	Version  string
	Revision string
	Time     time.Time
	Dirty    bool
	Go       string
}

// Read collects version details from the linker flag and embedded build info.
func Read() Info {
	info, _ := debug.ReadBuildInfo()
	return fromBuildInfo(info, buildVersion)
}

// Current returns the best available version string.
func Current() string {
	return Read().Version
}

// Module returns the main module path.
func Module() string {
	return Read().Module
}

// String renders the info as a one-line banner.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", i.Module, i.Version)
	if i.Revision != "" {
		rev := i.Revision
		if i.Dirty {
			rev += "+dirty"
		}
		fmt.Fprintf(&b, " (%s", rev)
		if !i.Time.IsZero() {
			fmt.Fprintf(&b, ", %s", i.Time.UTC().Format(time.RFC3339))
		}
		b.WriteString(")")
	}
	if i.Go != "" {
		fmt.Fprintf(&b, " %s", i.Go)
	}
	return b.String()
}

func fromBuildInfo(info *debug.BuildInfo, override string) Info {
	out := Info{Module: defaultModule, Version: "v0.0.0-unknown"}
	if info != nil {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			out.Module = path
		}
		out.Go = info.GoVersion
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				out.Revision = setting.Value
			case "vcs.time":
				if ts, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					out.Time = ts
				}
			case "vcs.modified":
				out.Dirty = setting.Value == "true"
			}
		}
		if len(out.Revision) > 12 {
			out.Revision = out.Revision[:12]
		}
		switch v := strings.TrimSpace(info.Main.Version); {
		case v != "" && v != "(devel)":
			out.Version = strings.TrimSuffix(v, "+dirty")
		case out.Revision != "" && !out.Time.IsZero():
			out.Version = "v0.0.0-" + out.Time.UTC().Format("20060102150405") + "-" + out.Revision
		}
	}
	if v := strings.TrimSpace(override); v != "" {
		out.Version = v
	}
	return out
}
