package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bidtracker"
	"bidtracker/internal/observability"
)

// Per-operation timeouts. The endpoint is a best-effort third-party script
// with no uptime guarantee; every call is independently bounded so the UI
// stays usable offline.
const (
	testTimeout      = 5 * time.Second
	fetchBidTimeout  = 10 * time.Second
	syncBidTimeout   = 15 * time.Second
	fetchUserTimeout = 5 * time.Second
	syncUserTimeout  = 10 * time.Second
)

// Sync actions understood by the remote script.
const (
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionCreateUser = "createUser"
	ActionUpdateUser = "updateUser"
	ActionDeleteUser = "deleteUser"
)

const defaultTargetYear = 2026

// URLSource yields the currently configured endpoint URL, empty when the
// remote store is not set up. The URL can change at runtime through the
// sheet-config surface, so it is read per call.
type URLSource func(ctx context.Context) string

// Client talks to the spreadsheet-backed script endpoint. All methods are
// fail-safe: sync calls reduce every failure to false, fetch calls propagate a
// classified error for the caller's fallback logic.
type Client struct {
	http    *http.Client
	baseURL URLSource
	metrics *observability.Metrics
}

func NewClient(baseURL URLSource, metrics *observability.Metrics) *Client {
	return &Client{
		http:    &http.Client{}, // per-call deadlines via context
		baseURL: baseURL,
		metrics: metrics,
	}
}

// Configured reports whether an endpoint URL is set.
func (c *Client) Configured(ctx context.Context) bool {
	return c.baseURL(ctx) != ""
}

// ValidateURL checks the shape of a candidate endpoint URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return &Error{Kind: KindBadURL, Message: "올바른 원격 스크립트 URL이 아닙니다.", Err: err}
	}
	return nil
}

// TestConnection probes the given URL with a bounded read and returns a
// user-facing result message. The error, when non-nil, is a classified *Error.
func (c *Client) TestConnection(ctx context.Context, rawURL string) (string, error) {
	if err := ValidateURL(rawURL); err != nil {
		return "", err
	}

	start := time.Now()
	body, err := c.get(ctx, rawURL, "read", testTimeout)
	if err != nil {
		c.metrics.ObserveRemote("test", observability.OutcomeFailed, time.Since(start))
		return "", err
	}
	c.metrics.ObserveRemote("test", observability.OutcomeOK, time.Since(start))

	if _, err := decodeRows(body, "items"); err != nil {
		// A bare success marker still counts as a reachable endpoint.
		if ok, _ := decodeResultMarker(body); ok {
			return "연동 성공! 데이터를 정상적으로 불러왔습니다.", nil
		}
		return "", err
	}
	return "연동 성공! 데이터를 정상적으로 불러왔습니다.", nil
}

// FetchBids reads all bid rows. Rows are coerced and repaired so the caller
// never sees a blank or duplicated ID. Returns (nil, nil) when no endpoint is
// configured.
func (c *Client) FetchBids(ctx context.Context) ([]bidtracker.Bid, error) {
	base := c.baseURL(ctx)
	if base == "" {
		c.metrics.ObserveRemote("read", observability.OutcomeSkipped, 0)
		return nil, nil
	}

	start := time.Now()
	body, err := c.get(ctx, base, "read", fetchBidTimeout)
	if err != nil {
		c.metrics.ObserveRemote("read", observability.OutcomeFailed, time.Since(start))
		return nil, err
	}
	rows, err := decodeRows(body, "items")
	if err != nil {
		c.metrics.ObserveRemote("read", observability.OutcomeFailed, time.Since(start))
		return nil, err
	}
	c.metrics.ObserveRemote("read", observability.OutcomeOK, time.Since(start))

	bids := make([]bidtracker.Bid, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		bid := mapBid(row)
		if bid.ID == "" || seen[bid.ID] {
			bid.ID = bidtracker.NewID()
		}
		seen[bid.ID] = true
		bids = append(bids, bid)
	}
	return bids, nil
}

// SyncBid posts a create/update/delete envelope. The remote result marker is
// authoritative when present; otherwise the HTTP status decides. All failures
// reduce to false.
func (c *Client) SyncBid(ctx context.Context, action string, bid *bidtracker.Bid, id string) bool {
	if id == "" && bid != nil {
		id = bid.ID
	}
	return c.post(ctx, action, syncEnvelope{Action: action, Data: bid, ID: id}, syncBidTimeout)
}

// FetchUsers reads the remote account rows. User data is supplementary, so the
// timeout is shorter than the bid read.
func (c *Client) FetchUsers(ctx context.Context) ([]bidtracker.AppUser, error) {
	base := c.baseURL(ctx)
	if base == "" {
		c.metrics.ObserveRemote("readUsers", observability.OutcomeSkipped, 0)
		return nil, nil
	}

	start := time.Now()
	body, err := c.get(ctx, base, "readUsers", fetchUserTimeout)
	if err != nil {
		c.metrics.ObserveRemote("readUsers", observability.OutcomeFailed, time.Since(start))
		return nil, err
	}
	rows, err := decodeRows(body, "users", "items")
	if err != nil {
		c.metrics.ObserveRemote("readUsers", observability.OutcomeFailed, time.Since(start))
		return nil, err
	}
	c.metrics.ObserveRemote("readUsers", observability.OutcomeOK, time.Since(start))

	users := make([]bidtracker.AppUser, 0, len(rows))
	for _, row := range rows {
		if u := mapUser(row); u.ID != "" {
			users = append(users, u)
		}
	}
	return users, nil
}

// SyncUser mirrors SyncBid for the account list.
func (c *Client) SyncUser(ctx context.Context, action string, user *bidtracker.AppUser, id string) bool {
	if id == "" && user != nil {
		id = user.ID
	}
	return c.post(ctx, action, syncEnvelope{Action: action, User: user, ID: id}, syncUserTimeout)
}

// syncEnvelope is the POST body consumed by the script's doPost.
type syncEnvelope struct {
	Action string              `json:"action"`
	Data   *bidtracker.Bid     `json:"data,omitempty"`
	User   *bidtracker.AppUser `json:"user,omitempty"`
	ID     string              `json:"id,omitempty"`
}

func (c *Client) get(ctx context.Context, base, action string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+sep+"action="+action, nil)
	if err != nil {
		return nil, &Error{Kind: KindBadURL, Message: "올바른 원격 스크립트 URL이 아닙니다.", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, action string, envelope syncEnvelope, timeout time.Duration) bool {
	base := c.baseURL(ctx)
	if base == "" {
		c.metrics.ObserveRemote(action, observability.OutcomeSkipped, 0)
		return false
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	ok := func() bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, base, bytes.NewReader(payload))
		if err != nil {
			return false
		}
		// The Apps Script endpoint expects a text body, not application/json;
		// a JSON content type would trigger a CORS preflight it cannot answer.
		req.Header.Set("Content-Type", "text/plain;charset=utf-8")

		resp, err := c.http.Do(req)
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()

		body, _ := io.ReadAll(resp.Body)
		if ok, found := decodeResultMarker(body); found {
			return ok
		}
		return resp.StatusCode >= 200 && resp.StatusCode < 300
	}()

	outcome := observability.OutcomeOK
	if !ok {
		outcome = observability.OutcomeFailed
	}
	c.metrics.ObserveRemote(action, outcome, time.Since(start))
	return ok
}

// decodeResultMarker looks for the {"result": "success"|other} marker. The
// second return reports whether a marker was present at all.
func decodeResultMarker(body []byte) (bool, bool) {
	var payload struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Result == "" {
		return false, false
	}
	return payload.Result == "success", true
}

// decodeRows accepts {listKey: [...]}, a bare array, or an {error} object, and
// classifies everything else as a bad payload.
func decodeRows(body []byte, listKeys ...string) ([]map[string]any, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, badPayloadError("", err)
	}

	switch v := payload.(type) {
	case []any:
		return toRowMaps(v), nil
	case map[string]any:
		if msg := str(v["error"]); msg != "" {
			return nil, badPayloadError("스크립트 에러: "+msg, nil)
		}
		for _, key := range listKeys {
			if rows, ok := v[key].([]any); ok {
				return toRowMaps(rows), nil
			}
		}
	}
	return nil, badPayloadError("", nil)
}

func toRowMaps(rows []any) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func mapBid(row map[string]any) bidtracker.Bid {
	return bidtracker.Bid{
		ID:              str(row["id"]),
		TargetYear:      coerceInt(row["targetYear"], defaultTargetYear),
		Category:        bidtracker.BidCategory(str(row["category"])),
		ClientName:      str(row["clientName"]),
		Manager:         str(row["manager"]),
		ProjectName:     str(row["projectName"]),
		Method:          str(row["method"]),
		Schedule:        str(row["schedule"]),
		ContractPeriod:  str(row["contractPeriod"]),
		Competitors:     str(row["competitors"]),
		ProposalAmount:  coerceInt64(row["proposalAmount"], 0),
		StatusDetail:    str(row["statusDetail"]),
		Result:          bidtracker.BidResult(str(row["result"])),
		PreferredBidder: str(row["preferredBidder"]),
		Remarks:         str(row["remarks"]),
	}
}

func mapUser(row map[string]any) bidtracker.AppUser {
	return bidtracker.AppUser{
		ID:                     str(row["id"]),
		Name:                   str(row["name"]),
		BirthDate:              birthDateString(row["birthDate"]),
		Password:               str(row["password"]),
		IsAdmin:                boolVal(row["isAdmin"]),
		LastPasswordChangeDate: str(row["lastPasswordChangeDate"]),
	}
}

// str renders any scalar cell as a trimmed string. Spreadsheets return
// numbers for numeric-looking cells.
func str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// birthDateString restores leading zeros lost when the sheet stores a
// birthdate like 010203 as a number.
func birthDateString(v any) string {
	s := str(v)
	if _, isNum := v.(float64); isNum && len(s) < 6 {
		return strings.Repeat("0", 6-len(s)) + s
	}
	return s
}

func coerceInt(v any, def int) int {
	return int(coerceInt64(v, int64(def)))
}

func coerceInt64(v any, def int64) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		if n := bidtracker.ParseNumberFromCommas(t); n != 0 || strings.ContainsAny(t, "0123456789") {
			return n
		}
	}
	return def
}

func boolVal(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	case float64:
		return t != 0
	}
	return false
}
