//go:build integration

package testdb

import (
	"net/url"
	"os"
)

// databaseURLVars are checked in order by GetTestDatabaseURL.
var databaseURLVars = []string{"ACCOUNT_TEST_DB_URL", "ACCOUNT_STORE_DATABASE_URL", "DATABASE_URL"}

// GetTestDatabaseURL returns the first database URL set in the environment,
// or "" if none is.
func GetTestDatabaseURL() string {
	for _, name := range databaseURLVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ShouldSkipDatabaseTest reports whether no database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// isCIEnvironment returns true if running in any type of CI environment.
func isCIEnvironment() bool {
	for _, name := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// maskDatabaseURL hides the password of a database URL for logging.
func maskDatabaseURL(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "<unparseable database URL>"
	}
	return u.Redacted()
}
