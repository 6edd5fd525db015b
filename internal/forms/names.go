package forms

import (
	"regexp"
	"strings"

	"github.com/chazuruo/aoss-console/internal/errors"
)

var (
	collectionNameRe = regexp.MustCompile(`^[a-z][a-z0-9-]{2,31}$`)
	groupNameRe      = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,32}$`)
	indexNameRe      = regexp.MustCompile(`^[a-z0-9_-]{3,64}$`)
)

// Generated names used when the name field is left blank.
const (
	DefaultCollectionName   = "new-collection"
	DefaultCollectionV1Name = "new-collection-v1"
	DefaultGroupName        = "new-collection-group"
	DefaultIndexName        = "new-index"
)

// ValidateCollectionName checks a collection name. Blank names are allowed
// and replaced by a generated default.
func ValidateCollectionName(name string) error {
	if name == "" || collectionNameRe.MatchString(name) {
		return nil
	}
	return errors.Invalidf("collection name %q must start with a lowercase letter and be 3 to 32 characters of a-z, 0-9 and -", name)
}

// ValidateGroupName checks a collection group name.
func ValidateGroupName(name string) error {
	if name == "" || groupNameRe.MatchString(name) {
		return nil
	}
	return errors.Invalidf("collection group name %q must be 3 to 32 characters of a-z, A-Z, 0-9, _ and -", name)
}

// ValidateIndexName checks an index name.
func ValidateIndexName(name string) error {
	if name == "" || indexNameRe.MatchString(name) {
		return nil
	}
	return errors.Invalidf("index name %q must be 3 to 64 characters of a-z, 0-9, _ and -", name)
}

func orDefault(name, def string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return def
}
