package config

// Lua schema field names and globals
const (
	luaGlobalHProfile = "hprofile"

	luaFieldMeta    = "meta"
	luaFieldArchive = "archive"
	luaFieldSigning = "signing"
	luaFieldHistory = "history"

	luaFieldName          = "name"
	luaFieldDesc          = "description"
	luaFieldServer        = "server"
	luaFieldChunkSize     = "chunk_size"
	luaFieldVerify        = "verify"
	luaFieldKey           = "key"
	luaFieldPassphraseEnv = "passphrase_env"
	luaFieldEnabled       = "enabled"
	luaFieldRetention     = "retention"
)

// FileName is the config file looked up in a profile workspace.
const FileName = "hprofile.lua"
