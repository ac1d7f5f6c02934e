// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 24

// Skip Scheduling - these keys tune when segments are acted on.
const (
	SkipMinDuration      = "skip.min_duration"
	SkipCheckInterval    = "skip.check_interval"
	SkipNoticeCategories = "skip.notice_categories"
	SkipIgnoreCategories = "skip.ignore_categories"
	SkipLockedCategories = "skip.locked_categories"
	VirtualTimeRefresh   = "skip.virtual_time_refresh"
)

// Notices - these keys configure the on-screen notices shown in the player.
const (
	NoticeDuration       = "notice.duration"
	NoticeAdvanceLead    = "notice.advance_lead"
	NoticeAdvanceRefresh = "notice.advance_refresh"
)

// Segment Sources - these keys select where segment data comes from.
const (
	SegmentsDir       = "segments.dir"
	AniskipEnable     = "aniskip.enable"
	AniskipTypes      = "aniskip.types"
	AniskipCacheTTL   = "aniskip.cache_ttl"
	SubmitCategory    = "submit.category"
	SubmitDefaultSpan = "submit.default_span"
)

// Media Playback - these keys configure the mpv session.
const (
	PlayerPath           = "player.path"
	PlayerArgs           = "player.args"
	PlayerSampleInterval = "player.sample_interval"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the application behavior outside the player.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
