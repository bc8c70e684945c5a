package bidtracker

// Result of a bid. Values match the spreadsheet columns, which are kept in Korean.
type BidResult string

const (
	ResultPending BidResult = "진행중"
	ResultWon     BidResult = "수주"
	ResultLost    BidResult = "탈락"
	ResultDrop    BidResult = "드랍"
)

// Category of a bid. Test rows are excluded from statistics.
type BidCategory string

const (
	CategoryNew      BidCategory = "신규"
	CategoryExisting BidCategory = "기존"
	CategoryTest     BidCategory = "Test"
)

// Bid is a tracked sales opportunity. IDs are generated client-side and must be
// unique within the registry; remote rows with blank or duplicate IDs are
// repaired at fetch time.
type Bid struct {
	ID              string      `json:"id"`
	TargetYear      int         `json:"targetYear"`
	Category        BidCategory `json:"category"`
	ClientName      string      `json:"clientName"`
	Manager         string      `json:"manager"`
	ProjectName     string      `json:"projectName"`
	Method          string      `json:"method"`
	Schedule        string      `json:"schedule"`
	ContractPeriod  string      `json:"contractPeriod"`
	Competitors     string      `json:"competitors"`
	ProposalAmount  int64       `json:"proposalAmount"` // KRW
	StatusDetail    string      `json:"statusDetail"`
	Result          BidResult   `json:"result"`
	PreferredBidder string      `json:"preferredBidder"`
	Remarks         string      `json:"remarks"`
}

// AppUser is an account in the merged user list. Passwords are stored and
// compared in plaintext; this tool runs on a trusted internal network.
type AppUser struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	BirthDate              string `json:"birthDate"` // 6 digits, e.g. 610101
	Password               string `json:"password,omitempty"`
	IsAdmin                bool   `json:"isAdmin"`
	LastPasswordChangeDate string `json:"lastPasswordChangeDate,omitempty"` // ISO date
}

// CategoryResultCount is one row of the dashboard chart: result counts for a
// single category (new/existing).
type CategoryResultCount struct {
	Category BidCategory `json:"category"`
	Won      int         `json:"won"`
	Pending  int         `json:"pending"`
	Lost     int         `json:"lost"`
	Drop     int         `json:"drop"`
}

// DashboardStats summarizes one year of bids, excluding the Test category.
// WinRate is won/completed rounded to a whole percent; 0 when nothing completed.
type DashboardStats struct {
	TotalBids           int                   `json:"totalBids"`
	WonBids             int                   `json:"wonBids"`
	LostBids            int                   `json:"lostBids"`
	PendingBids         int                   `json:"pendingBids"`
	CompletedBids       int                   `json:"completedBids"`
	WinRate             int                   `json:"winRate"`
	TotalProposalAmount int64                 `json:"totalProposalAmount"`
	TotalWonAmount      int64                 `json:"totalWonAmount"`
	ByCategory          []CategoryResultCount `json:"byCategory"`
}

// ConnectionStatus is the snapshot behind the dashboard header indicator.
type ConnectionStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Message    string `json:"message,omitempty"`
	CheckedAt  string `json:"checkedAt,omitempty"` // RFC3339
}

// AdminUserID is the bundled administrator account. It can never be deleted.
const AdminUserID = "admin"

// MasterUsers is the bundled default account list. Local and remote lists are
// merged over it by ID, later sources winning.
var MasterUsers = []AppUser{
	{ID: AdminUserID, Name: "최철민", BirthDate: "760112", Password: "4422", IsAdmin: true, LastPasswordChangeDate: "2024-01-01"},
	{ID: "user_psi", Name: "박상일", BirthDate: "701017", Password: "3607", LastPasswordChangeDate: "2024-10-17"},
	{ID: "user_sjw", Name: "송제우", BirthDate: "750813", Password: "1234", LastPasswordChangeDate: "2024-08-13"},
	{ID: "user_lsh", Name: "이신형", BirthDate: "820119", Password: "0173", LastPasswordChangeDate: "2024-01-19"},
	{ID: "user_kgw", Name: "김경우", BirthDate: "780219", Password: "1212", LastPasswordChangeDate: "2024-02-19"},
	{ID: "user_yhj", Name: "여혜진", BirthDate: "700611", Password: "1234", LastPasswordChangeDate: "2024-06-11"},
}

// SampleBids is the offline fallback dataset shown when no remote endpoint is
// configured or the remote fetch fails with an empty registry.
var SampleBids = []Bid{
	{
		ID:              "1",
		TargetYear:      2025,
		Category:        CategoryNew,
		ClientName:      "로보트보쉬코리아",
		Manager:         "영업부 최철민",
		ProjectName:     "보쉬 용인 오피스/세종 공장 보안/미화관리",
		Method:          "입찰",
		Schedule:        "현설 9/25(목)\n공고 9/26(금)\n제출 10/17(금)",
		ContractPeriod:  "2026.1.1 ~ 12.31",
		Competitors:     "캡스텍(기존), 당사, IBS, 동우유니온",
		ProposalAmount:  0,
		StatusDetail:    "2025.10.17(금) 서류제출\n2025.10.22(수) 우협사 선정",
		Result:          ResultLost,
		PreferredBidder: "캡스텍",
		Remarks:         "당사 불참",
	},
	{
		ID:              "5",
		TargetYear:      2026,
		Category:        CategoryExisting,
		ClientName:      "현대엔지니어링",
		Manager:         "영업부 박상일",
		ProjectName:     "HEC 시화MTV 복합물류센터 FM 위탁관리",
		Method:          "입찰",
		Schedule:        "현설 10/16(목)\n제출 10/22(수)",
		ContractPeriod:  "2027.1.1 ~ 12.31",
		Competitors:     "당사, CHM, 백상, 앨림, 발렉스",
		ProposalAmount:  4_200_000_000,
		StatusDetail:    "2025.10.29(수) 결과 확인",
		Result:          ResultWon,
		PreferredBidder: "당사",
		Remarks:         "임대진행중",
	},
}
