package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// FrameSpecVersion is the open frames spec version sent with every action.
	FrameSpecVersion = "1.0.0"
	// FrameClientProtocol identifies this client to frame servers.
	FrameClientProtocol = "lens@1.0.0"
	// MaxFrameButtons is the number of of:button:N tags a frame may declare.
	MaxFrameButtons = 4
)

// Button actions understood by the frame proxy.
const (
	ButtonActionPost         = "post"
	ButtonActionPostRedirect = "post_redirect"
	ButtonActionLink         = "link"
	ButtonActionMint         = "mint"
	ButtonActionTx           = "tx"
)

// FrameActionRequest is the body of a frame button click.
type FrameActionRequest struct {
	ButtonAction string `json:"buttonAction,omitempty"`
	ButtonIndex  int    `json:"buttonIndex"`
	InputText    string `json:"inputText,omitempty"`
	PostURL      string `json:"postUrl"`
	PubID        string `json:"pubId"`
	State        string `json:"state,omitempty"`
}

// FrameAction is the canonical payload the Lens API signs on behalf of the actor.
type FrameAction struct {
	ActionResponse string `json:"actionResponse"`
	ButtonIndex    int    `json:"buttonIndex"`
	InputText      string `json:"inputText"`
	ProfileID      string `json:"profileId"`
	PubID          string `json:"pubId"`
	SpecVersion    string `json:"specVersion"`
	State          string `json:"state"`
	URL            string `json:"url"`
}

// NewFrameAction builds the payload to sign for a button click by actor.
func NewFrameAction(actor Identity, req FrameActionRequest) FrameAction {
	return FrameAction{
		ActionResponse: "",
		ButtonIndex:    req.ButtonIndex,
		InputText:      req.InputText,
		ProfileID:      actor.ID,
		PubID:          req.PubID,
		SpecVersion:    FrameSpecVersion,
		State:          req.State,
		URL:            req.PostURL,
	}
}

// TypedField is one member of an EIP-712 struct type.
type TypedField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TypedDomain is the EIP-712 domain separator.
type TypedDomain struct {
	Name              string `json:"name"`
	ChainID           int64  `json:"chainId"`
	Version           string `json:"version"`
	VerifyingContract string `json:"verifyingContract"`
}

// TypedData is the EIP-712 document that was signed.
type TypedData struct {
	Types  map[string][]TypedField `json:"types,omitempty"`
	Domain TypedDomain             `json:"domain"`
	Value  map[string]any          `json:"value"`
}

// SignedFrameAction is returned by the signing service.
type SignedFrameAction struct {
	Signature       string    `json:"signature"`
	SignedTypedData TypedData `json:"signedTypedData"`
}

// FrameButton is a button declared by a frame document.
type FrameButton struct {
	Action  string `json:"action"`
	Button  string `json:"button"`
	PostURL string `json:"postUrl,omitempty"`
	Target  string `json:"target,omitempty"`
}

// Frame is the normalized form of a frame HTML document.
type Frame struct {
	AcceptsAnonymous bool          `json:"acceptsAnonymous"`
	Buttons          []FrameButton `json:"buttons"`
	FrameURL         string        `json:"frameUrl"`
	Image            string        `json:"image"`
	ImageAspectRatio string        `json:"imageAspectRatio,omitempty"`
	InputText        string        `json:"inputText,omitempty"`
	LensFrameVersion string        `json:"lensFrameVersion"`
	PostURL          string        `json:"postUrl"`
	State            string        `json:"state,omitempty"`
}

// TransactionParams are the eth_sendTransaction arguments of a frame transaction.
type TransactionParams struct {
	ABI   []any  `json:"abi,omitempty"`
	Data  string `json:"data"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// FrameTransaction is the transaction intent returned by a frame for tx buttons.
type FrameTransaction struct {
	ChainID string            `json:"chainId"`
	Method  string            `json:"method"`
	Params  TransactionParams `json:"params"`
}

// SupportedChains lists the EVM chain ids a frame transaction may target.
var SupportedChains = map[int64]string{
	1:       "Ethereum",
	10:      "Optimism",
	137:     "Polygon",
	8453:    "Base",
	42161:   "Arbitrum",
	80002:   "Polygon Amoy",
	7777777: "Zora",
}

// Chain returns the numeric chain id of a CAIP-2 "eip155:<id>" reference.
func (t FrameTransaction) Chain() (int64, error) {
	raw := strings.TrimPrefix(t.ChainID, "eip155:")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", t.ChainID, err)
	}
	if _, ok := SupportedChains[id]; !ok {
		return id, ErrUnsupportedChain
	}
	return id, nil
}
