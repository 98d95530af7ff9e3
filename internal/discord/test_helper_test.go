package discord

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

const (
	testGuild    = "100000000000000001"
	testUser     = "200000000000000002"
	testOpponent = "200000000000000003"
	testChannel  = "300000000000000004"
)

// MockRoundTripper implements http.RoundTripper for intercepting Discord calls
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}

// discordCall is one captured request to the Discord REST API
type discordCall struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

// TestContext wires a fake API backend and a Discord session whose REST calls are captured
type TestContext struct {
	Server    *httptest.Server
	Mux       *http.ServeMux
	APIClient *APIClient
	Session   *discordgo.Session

	mu    sync.Mutex
	calls []discordCall
}

func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewAPIClient(server.URL, "test-api-key")
	client.retryDelay = time.Millisecond

	session, err := discordgo.New("Bot test-token")
	require.NoError(t, err)

	ctx := &TestContext{
		Server:    server,
		Mux:       mux,
		APIClient: client,
		Session:   session,
	}

	session.Client = &http.Client{Transport: &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			call := discordCall{Method: req.Method, Path: req.URL.Path}
			if req.Body != nil {
				data, _ := io.ReadAll(req.Body)
				_ = json.Unmarshal(data, &call.Body)
			}
			ctx.mu.Lock()
			ctx.calls = append(ctx.calls, call)
			ctx.mu.Unlock()

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString("{}")),
				Header:     make(http.Header),
				Request:    req,
			}, nil
		},
	}}

	return ctx
}

// Edits returns the bodies of every interaction response edit
func (tc *TestContext) Edits() []map[string]interface{} {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	var edits []map[string]interface{}
	for _, c := range tc.calls {
		if c.Method == http.MethodPatch && strings.HasSuffix(c.Path, "/messages/@original") {
			edits = append(edits, c.Body)
		}
	}
	return edits
}

// LastEdit returns the final interaction response edit
func (tc *TestContext) LastEdit(t *testing.T) map[string]interface{} {
	t.Helper()
	edits := tc.Edits()
	require.NotEmpty(t, edits, "expected an interaction response edit")
	return edits[len(edits)-1]
}

// Callbacks returns the bodies of every initial interaction response
func (tc *TestContext) Callbacks() []map[string]interface{} {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	var out []map[string]interface{}
	for _, c := range tc.calls {
		if c.Method == http.MethodPost && strings.HasSuffix(c.Path, "/callback") {
			out = append(out, c.Body)
		}
	}
	return out
}

// WriteJSON writes data as a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func commandInteraction(guildID, name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "900000000000000009",
		AppID:     "800000000000000008",
		Token:     "interaction-token",
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   guildID,
		ChannelID: testChannel,
		Member:    &discordgo.Member{User: &discordgo.User{ID: testUser, Username: "tourist"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: options,
		},
	}}
}

func subcommand(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:    name,
		Type:    discordgo.ApplicationCommandOptionSubCommand,
		Options: options,
	}
}

func userOption(name, userID string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionUser, Value: userID}
}

func intOption(name string, v int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(v)}
}

func stringOption(name, v string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: v}
}

// embedsOf extracts the embeds from a captured edit body
func embedsOf(t *testing.T, edit map[string]interface{}) []map[string]interface{} {
	t.Helper()
	raw, ok := edit["embeds"].([]interface{})
	require.True(t, ok, "edit has no embeds: %v", edit)
	out := make([]map[string]interface{}, 0, len(raw))
	for _, e := range raw {
		out = append(out, e.(map[string]interface{}))
	}
	return out
}
