// Package sharetoken encodes the time-limited credential carried by secure
// workspace links.
//
// The token is a reversible encoding, not a signature: anyone who knows the
// scheme can mint one for any workspace id. Links built from it must keep
// their current format, so do not swap it for a signed token here.
package sharetoken

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// TTL is how long a token stays valid after issuance
const TTL = 30 * time.Minute

// Status is the outcome of decoding a token
type Status int

const (
	Invalid Status = iota
	Valid
	Expired
)

// String returns the status name
func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Expired:
		return "expired"
	default:
		return "invalid"
	}
}

// Result is what Decode recovered from a token
type Result struct {
	Status      Status
	WorkspaceID int64
	Password    string
	IssuedAt    time.Time
}

// Encode produces the token for (workspaceID, password, now)
func Encode(workspaceID int64, password string, now time.Time) string {
	raw := strconv.FormatInt(workspaceID, 10) + ":" + password + ":" + strconv.FormatInt(now.UnixMilli(), 10)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// Decode parses a token and checks it against now. WorkspaceID and Password
// are only set for Valid results.
func Decode(token string, now time.Time) Result {
	// '+' comes back as ' ' when the token went through a form decoder
	token = strings.ReplaceAll(strings.TrimSpace(token), " ", "+")
	if token == "" {
		return Result{Status: Invalid}
	}

	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Result{Status: Invalid}
	}
	decoded := string(data)

	first := strings.Index(decoded, ":")
	last := strings.LastIndex(decoded, ":")
	if first < 0 || first == last {
		return Result{Status: Invalid}
	}

	workspaceID, err := strconv.ParseInt(decoded[:first], 10, 64)
	if err != nil {
		return Result{Status: Invalid}
	}
	issuedMs, err := strconv.ParseInt(decoded[last+1:], 10, 64)
	if err != nil {
		return Result{Status: Invalid}
	}
	issuedAt := time.UnixMilli(issuedMs)

	if now.Sub(issuedAt) > TTL {
		return Result{Status: Expired, IssuedAt: issuedAt}
	}

	return Result{
		Status:      Valid,
		WorkspaceID: workspaceID,
		Password:    decoded[first+1 : last],
		IssuedAt:    issuedAt,
	}
}
