package paypal

import "github.com/fastprodman/paygate/internal/config"

const maskedValue = "********"

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Setting struct {
	Key     string   `json:"key"`
	Type    string   `json:"type"`
	Label   string   `json:"label"`
	Value   string   `json:"value"`
	Options []Option `json:"options,omitempty"`
	Secret  bool     `json:"secret,omitempty"`
}

// GatewayMetadata describes the gateway and the settings an operator can
// change for it.
type GatewayMetadata struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Settings    []Setting `json:"settings"`
}

func Metadata(cfg config.PayPalConfig) GatewayMetadata {
	mode := config.PayPalModeLive
	if cfg.Sandbox() {
		mode = config.PayPalModeSandbox
	}

	return GatewayMetadata{
		Name:        "PayPal",
		Description: "PayPal payment gateway",
		Settings: []Setting{
			{
				Key:   "mode",
				Type:  "select",
				Label: "Mode",
				Value: mode,
				Options: []Option{
					{Value: config.PayPalModeSandbox, Label: "Sandbox"},
					{Value: config.PayPalModeLive, Label: "Live"},
				},
			},
			{Key: "CLIENT_ID", Type: "text", Label: "PayPal Client ID", Value: cfg.ClientID},
			{Key: "SECRET", Type: "text", Label: "PayPal Secret", Value: cfg.Secret, Secret: true},
			{Key: "SANDBOX_CLIENT_ID", Type: "text", Label: "PayPal Sandbox Client ID", Value: cfg.SandboxClientID},
			{Key: "SANDBOX_SECRET", Type: "text", Label: "PayPal Sandbox Secret", Value: cfg.SandboxSecret, Secret: true},
		},
	}
}

// Masked returns a copy with every non-empty secret value replaced.
func (m GatewayMetadata) Masked() GatewayMetadata {
	out := m
	out.Settings = make([]Setting, len(m.Settings))

	for i, s := range m.Settings {
		if s.Secret && s.Value != "" {
			s.Value = maskedValue
		}

		out.Settings[i] = s
	}

	return out
}
