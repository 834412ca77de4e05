package commons

import "math/big"

// Intent describes a side effect the host must perform on the engine's
// behalf: registering the supply denom, minting, burning, or paying out
// reserve. The engine never executes effects itself; each operation returns
// the ordered list of intents for the dispatch layer to consume, and a failed
// operation returns none.
type Intent interface {
	IntentKind() string
}

// CreateDenomIntent registers the supply token with the surrounding token
// system.
type CreateDenomIntent struct {
	Subdenom string `json:"subdenom"`
	Name     string `json:"name,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
}

func (CreateDenomIntent) IntentKind() string { return "create-denom" }

// MintIntent mints freshly purchased supply tokens to the buyer.
type MintIntent struct {
	Denom     string   `json:"denom"`
	Amount    *big.Int `json:"amount"`
	Recipient string   `json:"recipient"`
}

func (MintIntent) IntentKind() string { return "mint" }

// BurnIntent destroys the supply tokens a seller redeemed.
type BurnIntent struct {
	Denom  string   `json:"denom"`
	Amount *big.Int `json:"amount"`
	From   string   `json:"from"`
}

func (BurnIntent) IntentKind() string { return "burn" }

// SendIntent pays released reserve out to the seller.
type SendIntent struct {
	Denom     string   `json:"denom"`
	Amount    *big.Int `json:"amount"`
	Recipient string   `json:"recipient"`
}

func (SendIntent) IntentKind() string { return "send" }
