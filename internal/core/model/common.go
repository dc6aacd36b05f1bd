package model

// Source kinds
const (
	SourceManual  SourceKind = "manual"
	SourcePassive SourceKind = "passive"
)

// Render item kinds
const (
	ItemManual RenderKind = "manual"
	ItemBlock  RenderKind = "block"
	ItemGroup  RenderKind = "group"
	ItemGap    RenderKind = "gap"
)

// Well-known passive bucket types
const (
	BucketTypeWindow   = "currentwindow"
	BucketTypePresence = "afkstatus"
	BucketTypeWeb      = "web.tab.current"
)

// Presence status values carried in a status event payload
const (
	StatusActive   = "not-afk"
	StatusInactive = "afk"
)

// Diagnostic kinds
const (
	DiagMalformedMarker = "malformed_marker"
	DiagMalformedEvent  = "malformed_event"
)
