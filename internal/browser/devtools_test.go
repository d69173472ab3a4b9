package browser

import (
	"testing"

	cdplog "github.com/mafredri/cdp/protocol/log"
	"github.com/mafredri/cdp/protocol/network"
	"github.com/mafredri/cdp/protocol/runtime"
)

func TestRequestFromDevTools(t *testing.T) {
	ev := requestFromDevTools(&network.RequestWillBeSentReply{
		RequestID: "1000.7",
		Request:   network.Request{URL: "https://cms.example.com/uploads/a.png", Method: "GET"},
	})
	if ev.RequestID != "1000.7" || ev.URL != "https://cms.example.com/uploads/a.png" || ev.Method != "GET" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestResponseFromDevTools(t *testing.T) {
	ev := responseFromDevTools(&network.ResponseReceivedReply{
		RequestID: "1000.7",
		Response: network.Response{
			URL:     "https://cms.example.com/uploads/a.png",
			Status:  200,
			Headers: network.Headers(`{"Access-Control-Allow-Origin":"*","Vary":"Origin\nAccept-Encoding"}`),
		},
	})
	if ev.RequestID != "1000.7" || ev.Status != 200 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Headers.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("ACAO = %q", ev.Headers.Get("Access-Control-Allow-Origin"))
	}
	if got := ev.Headers.Values("Vary"); len(got) != 2 || got[1] != "Accept-Encoding" {
		t.Errorf("Vary = %v", got)
	}
}

func TestLogEntryFromDevTools(t *testing.T) {
	url := "https://my.example.com/about-us"
	ev := logEntryFromDevTools(&cdplog.EntryAddedReply{Entry: cdplog.Entry{
		Level: "error",
		Text:  "blocked by CORS policy",
		URL:   &url,
	}})
	if ev.Level != "error" || ev.Text != "blocked by CORS policy" || ev.URL != url {
		t.Fatalf("unexpected event: %+v", ev)
	}

	if ev := logEntryFromDevTools(&cdplog.EntryAddedReply{Entry: cdplog.Entry{Text: "no url"}}); ev.URL != "" {
		t.Fatalf("expected empty url, got %q", ev.URL)
	}
}

func TestConsoleCallFromDevTools(t *testing.T) {
	desc := "TypeError: Failed to fetch"
	ev := consoleCallFromDevTools(&runtime.ConsoleAPICalledReply{
		Type: "error",
		Args: []runtime.RemoteObject{
			{Value: []byte(`"request failed"`)},
			{Value: []byte(`503`)},
			{Description: &desc},
		},
	})
	if ev.Level != "error" || ev.Text != "request failed 503 TypeError: Failed to fetch" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}
