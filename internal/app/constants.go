package app

// DefaultBaseBet is the per-loser stake used when no bet is configured.
// Keep this centralized so tests or local runs can adjust the stake without
// touching multiple call sites.
const DefaultBaseBet int64 = 100
