package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field aliases seen across backend responses and token claims.
var (
	roleKeys           = []string{"userType", "user_type", "role"}
	userIDKeys         = []string{"userId", "user_id"}
	professionalIDKeys = []string{"professionalId", "professional_id"}
)

// IdentityFromFields normalizes a decoded JSON object (login body, token
// claims, who-am-I body) into an Identity. Missing fields are left zero;
// values of the wrong kind are ErrMalformedCredential.
func IdentityFromFields(fields map[string]any) (Identity, error) {
	var id Identity

	if v, ok := lookup(fields, roleKeys); ok {
		s, ok := v.(string)
		if !ok {
			return Identity{}, fmt.Errorf("%w: role is %T", ErrMalformedCredential, v)
		}
		id.Role = Role(strings.ToLower(strings.TrimSpace(s)))
	}

	if v, ok := lookup(fields, userIDKeys); ok {
		n, err := toInt64(v)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: user id: %v", ErrMalformedCredential, err)
		}
		id.UserID = n
	}

	if v, ok := lookup(fields, professionalIDKeys); ok {
		n, err := toInt64(v)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: professional id: %v", ErrMalformedCredential, err)
		}
		id.ProfessionalID = &n
	}

	return id, nil
}

// lookup returns the first present, non-null value among keys.
func lookup(fields map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("unexpected %T", v)
	}
}
