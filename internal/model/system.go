package model

// VersionInfo contains version and scoring-profile information for the application.
type VersionInfo struct {
	AppVersion  string          `json:"app_version"`
	DbVersion   string          `json:"db_version"`
	ProfileName string          `json:"profile_name"`
	Benchmark   string          `json:"benchmark"`
	Features    map[string]bool `json:"features"`
}
