package schema

// HeaderMarker prefixes section header lines (styled by console renderers).
const HeaderMarker = "\x1e"

// LocalImageIndicator marks records whose image is cached on disk.
const LocalImageIndicator = "🖼️"

// RemoteImageIndicator marks records whose image is only available online.
const RemoteImageIndicator = "🌐"
