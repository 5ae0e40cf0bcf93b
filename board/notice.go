// ABOUTME: Notice is the single success/failure channel the core exposes per attempted mutation.
// ABOUTME: Presentation layers render notices; they carry enough context to build a message.
package board

import (
	"crypto/rand"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// Severity classifies a notice for display styling.
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeveritySuccess {
		return "success"
	}
	return "error"
}

// Notice reports the outcome of one attempted mutation. Every operation
// resolves to either an updated state or a failure notice; nothing is
// silently swallowed.
type Notice struct {
	ID       ulid.ULID
	Severity Severity
	Op       string // operation name: "reorder", "create", "delete", ...
	BoardID  string
	PostID   string
	Message  string
	Err      error
}

// SuccessNotice builds a success notice for an operation.
func SuccessNotice(op, boardID, postID, message string) Notice {
	return Notice{
		ID:       newNoticeID(),
		Severity: SeveritySuccess,
		Op:       op,
		BoardID:  boardID,
		PostID:   postID,
		Message:  message,
	}
}

// FailureNotice builds a failure notice preserving the underlying error for
// callers that want to inspect the taxonomy.
func FailureNotice(op, boardID, postID string, err error) Notice {
	return Notice{
		ID:       newNoticeID(),
		Severity: SeverityError,
		Op:       op,
		BoardID:  boardID,
		PostID:   postID,
		Message:  fmt.Sprintf("%s failed: %v", op, err),
		Err:      err,
	}
}

func newNoticeID() ulid.ULID {
	return ulid.MustNew(ulid.Now(), rand.Reader)
}
