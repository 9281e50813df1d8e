package domain

// ComponentScores holds the four sub-scores for one wallet, each on the
// [0,1] scale before reweighting into the final score.
type ComponentScores struct {
	Wallet         string
	Activity       float64
	Risk           float64
	Reliability    float64
	Sophistication float64
}

// CreditScore is the final scoring artifact for one wallet.
//
// The component fields store each sub-score scaled to its weight-proportional
// ceiling (Activity 250, Risk 300, Reliability 250, Sophistication 200) for
// display only. They are NOT penalty-adjusted; only CreditScore reflects
// penalties, so the component sum can exceed the final score.
type CreditScore struct {
	Wallet              string `json:"wallet"`
	CreditScore         int    `json:"credit_score"`         // [0, 1000]
	ActivityScore       int    `json:"activity_score"`       // [0, 250]
	RiskScore           int    `json:"risk_score"`           // [0, 300]
	ReliabilityScore    int    `json:"reliability_score"`    // [0, 250]
	SophisticationScore int    `json:"sophistication_score"` // [0, 200]
}
