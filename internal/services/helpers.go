package services

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/platform/ctxutil"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// bcryptCost is a var so tests can lower it.
var bcryptCost = bcrypt.DefaultCost

func requireUser(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("Unauthorised request")
	}
	return rd.UserID, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func hashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func passwordMatches(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// rejectProtected fails when patch names any of the protected keys.
func rejectProtected(patch map[string]any, protected []string) error {
	var hit []string
	for _, k := range protected {
		if _, ok := patch[k]; ok {
			hit = append(hit, k)
		}
	}
	if len(hit) == 0 {
		return nil
	}
	sort.Strings(hit)
	return apierr.BadRequest("Cannot update protected fields", hit...)
}

func patchString(patch map[string]any, key string) (string, bool, error) {
	v, ok := patch[key]
	if !ok {
		return "", false, nil
	}
	s, isStr := v.(string)
	if !isStr {
		return "", false, apierr.BadRequest(key + " must be a string")
	}
	return strings.TrimSpace(s), true, nil
}

func patchStringList(patch map[string]any, key string) ([]string, bool, error) {
	v, ok := patch[key]
	if !ok {
		return nil, false, nil
	}
	switch t := v.(type) {
	case string:
		return []string{strings.TrimSpace(t)}, true, nil
	case []string:
		return t, true, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, it := range t {
			s, isStr := it.(string)
			if !isStr {
				return nil, false, apierr.BadRequest(key + " must be a list of strings")
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, true, nil
	default:
		return nil, false, apierr.BadRequest(key + " must be a list of strings")
	}
}
