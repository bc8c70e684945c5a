package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a failed remote call so the UI can explain what went wrong
// without crashing on any response shape.
type Kind string

const (
	KindBadURL     Kind = "bad_url"
	KindStatus     Kind = "status"
	KindTimeout    Kind = "timeout"
	KindNetwork    Kind = "network"
	KindBadPayload Kind = "bad_payload"
)

// Error is a classified remote failure. Message is user-facing (Korean, like
// the rest of the surface); Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("remote error (%s)", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the classification from an error chain. Unclassified errors
// count as network failures.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindNetwork
}

// classifyTransport maps a transport-level error to timeout or network.
func classifyTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "연결 시간이 초과되었습니다.", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "연결 시간이 초과되었습니다.", Err: err}
	}
	return &Error{Kind: KindNetwork, Message: "네트워크 연결 오류 또는 CORS 정책 위반입니다.", Err: err}
}

func statusError(code int) *Error {
	return &Error{Kind: KindStatus, Message: fmt.Sprintf("서버 응답 오류 (상태코드: %d)", code)}
}

func badPayloadError(msg string, cause error) *Error {
	if msg == "" {
		msg = "응답 데이터 형식이 올바르지 않습니다."
	}
	return &Error{Kind: KindBadPayload, Message: msg, Err: cause}
}
