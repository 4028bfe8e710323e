package model

// StructuredOutput is the enforced shape of a procurement intelligence brief.
// The validate tags describe the schema; group and total counts are owned by the
// normalizer, so group arrays are only loosely bounded here.
type StructuredOutput struct {
	Title            string            `json:"title" validate:"min=1,max=200"`
	SummaryBullets   []CitedBullet     `json:"summaryBullets" validate:"min=5,max=8,dive"`
	Impact           Impact            `json:"impact"`
	PossibleActions  PossibleActions   `json:"possibleActions"`
	SelectedArticles []ArticleRef      `json:"selectedArticles" validate:"min=1,max=40,dive"`
	HeroSelection    HeroRef           `json:"heroSelection"`
	MarketIndicators []MarketIndicator `json:"marketIndicators" validate:"min=2,max=8,dive"`
}

// CitedBullet is a bullet backed by one or more selected-article citations
type CitedBullet struct {
	Text      string      `json:"text" validate:"min=12,max=400"`
	Citations []int       `json:"citations" validate:"min=1,max=4,dive,gte=1"`
	Signal    SignalLevel `json:"signal,omitempty" validate:"omitempty,oneof=confirmed early-signal unconfirmed"`
}

// Impact groups bullets by the kind of pressure they describe
type Impact struct {
	MarketCostDrivers                    []CitedBullet `json:"marketCostDrivers" validate:"max=40,dive"`
	SupplyBaseCapacity                   []CitedBullet `json:"supplyBaseCapacity" validate:"max=40,dive"`
	ContractingCommercialLevers          []CitedBullet `json:"contractingCommercialLevers" validate:"max=40,dive"`
	RiskRegulatoryOperationalConstraints []CitedBullet `json:"riskRegulatoryOperationalConstraints" validate:"max=40,dive"`
}

// Groups returns the impact groups in declaration order
func (i *Impact) Groups() []*[]CitedBullet {
	return []*[]CitedBullet{
		&i.MarketCostDrivers,
		&i.SupplyBaseCapacity,
		&i.ContractingCommercialLevers,
		&i.RiskRegulatoryOperationalConstraints,
	}
}

// ImpactGroupNames matches the order of Impact.Groups
var ImpactGroupNames = []string{
	"marketCostDrivers",
	"supplyBaseCapacity",
	"contractingCommercialLevers",
	"riskRegulatoryOperationalConstraints",
}

// Action is a recommended procurement move
type Action struct {
	Action          string `json:"action" validate:"min=12,max=240"`
	Rationale       string `json:"rationale" validate:"min=12,max=400"`
	ExpectedOutcome string `json:"expectedOutcome" validate:"min=12,max=240"`
	Owner           Owner  `json:"owner" validate:"oneof=Category Contracts Legal Ops"`
	Citations       []int  `json:"citations" validate:"min=1,max=4,dive,gte=1"`
}

// PossibleActions groups actions by time horizon
type PossibleActions struct {
	Next30Days   []Action `json:"next30Days" validate:"max=40,dive"`
	Next90Days   []Action `json:"next90Days" validate:"max=40,dive"`
	Next12Months []Action `json:"next12Months" validate:"max=40,dive"`
}

// Groups returns the horizon groups in declaration order
func (p *PossibleActions) Groups() []*[]Action {
	return []*[]Action{&p.Next30Days, &p.Next90Days, &p.Next12Months}
}

// ActionGroupNames matches the order of PossibleActions.Groups
var ActionGroupNames = []string{"next30Days", "next90Days", "next12Months"}

// ArticleRef points at a 1-based corpus position
type ArticleRef struct {
	ArticleIndex int    `json:"articleIndex"`
	Reason       string `json:"reason,omitempty" validate:"omitempty,max=400"`
}

// HeroRef names the lead article of the brief
type HeroRef struct {
	ArticleIndex int    `json:"articleIndex"`
	Rationale    string `json:"rationale,omitempty" validate:"omitempty,max=400"`
}

// MarketIndicator references an external market index
type MarketIndicator struct {
	IndexID string `json:"indexId" validate:"min=1,max=64"`
	Note    string `json:"note" validate:"min=12,max=300"`
}

// Owner is the function accountable for an action
type Owner string

const (
	OwnerCategory  Owner = "Category"
	OwnerContracts Owner = "Contracts"
	OwnerLegal     Owner = "Legal"
	OwnerOps       Owner = "Ops"
)

// Valid reports whether o is a known owner
func (o Owner) Valid() bool {
	switch o {
	case OwnerCategory, OwnerContracts, OwnerLegal, OwnerOps:
		return true
	default:
		return false
	}
}

// SignalLevel is the confidence level a bullet carries
type SignalLevel string

const (
	LevelConfirmed   SignalLevel = "confirmed"
	LevelEarlySignal SignalLevel = "early-signal"
	LevelUnconfirmed SignalLevel = "unconfirmed"
)

// Valid reports whether s is a known signal level (empty is allowed)
func (s SignalLevel) Valid() bool {
	switch s {
	case "", LevelConfirmed, LevelEarlySignal, LevelUnconfirmed:
		return true
	default:
		return false
	}
}

// Contract bounds enforced after normalization
const (
	MaxCitations = 4

	ImpactTotalMin = 10
	ImpactTotalMax = 16
	ActionTotalMin = 8
	ActionTotalMax = 12

	TitleMinWords = 8
	TitleMaxWords = 14
)

// GroupBounds is the allowed size of one named group
type GroupBounds struct {
	Min int
	Max int
}

// ImpactGroupBounds matches the order of Impact.Groups
var ImpactGroupBounds = []GroupBounds{{2, 5}, {2, 5}, {2, 5}, {2, 5}}

// ActionGroupBounds matches the order of PossibleActions.Groups
var ActionGroupBounds = []GroupBounds{{2, 5}, {2, 5}, {2, 4}}

// Limits are the per-request parameters of contract enforcement
type Limits struct {
	RequiredCount   int `json:"requiredCount"`
	MaxArticleIndex int `json:"maxArticleIndex"`
}

// Clone returns a deep copy so repairs never touch the caller's value
func (o *StructuredOutput) Clone() *StructuredOutput {
	c := *o
	c.SummaryBullets = cloneBullets(o.SummaryBullets)
	src := o.Impact.Groups()
	dst := c.Impact.Groups()
	for i := range src {
		*dst[i] = cloneBullets(*src[i])
	}
	srcActions := o.PossibleActions.Groups()
	dstActions := c.PossibleActions.Groups()
	for i := range srcActions {
		*dstActions[i] = cloneActions(*srcActions[i])
	}
	if o.SelectedArticles != nil {
		c.SelectedArticles = append([]ArticleRef{}, o.SelectedArticles...)
	}
	if o.MarketIndicators != nil {
		c.MarketIndicators = append([]MarketIndicator{}, o.MarketIndicators...)
	}
	return &c
}

func cloneBullets(in []CitedBullet) []CitedBullet {
	if in == nil {
		return nil
	}
	out := make([]CitedBullet, len(in))
	for i, b := range in {
		b.Citations = append([]int(nil), b.Citations...)
		out[i] = b
	}
	return out
}

func cloneActions(in []Action) []Action {
	if in == nil {
		return nil
	}
	out := make([]Action, len(in))
	for i, a := range in {
		a.Citations = append([]int(nil), a.Citations...)
		out[i] = a
	}
	return out
}
