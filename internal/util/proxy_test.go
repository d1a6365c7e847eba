package util

import (
	"net/http"
	"testing"
)

func clearProxyEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"HTTP_PROXY", "http_proxy", "HTTPS_PROXY", "https_proxy", "NO_PROXY", "no_proxy"} {
		t.Setenv(key, "")
	}
}

func TestNewProxyFunc_ExplicitOverride(t *testing.T) {
	clearProxyEnv(t)
	proxy := NewProxyFunc("http://proxy.internal:3128", "", "")

	req, err := http.NewRequest(http.MethodGet, "http://api.openai.com/v1/chat", nil)
	if err != nil {
		t.Fatal(err)
	}
	u, err := proxy(req)
	if err != nil {
		t.Fatal(err)
	}
	if u == nil || u.Host != "proxy.internal:3128" {
		t.Errorf("proxy URL = %v, want proxy.internal:3128", u)
	}
}

func TestNewProxyFunc_SchemeSelection(t *testing.T) {
	clearProxyEnv(t)
	proxy := NewProxyFunc("http://plain.internal:3128", "http://secure.internal:3128", "")

	req, err := http.NewRequest(http.MethodGet, "https://api.anthropic.com/v1/messages", nil)
	if err != nil {
		t.Fatal(err)
	}
	u, err := proxy(req)
	if err != nil {
		t.Fatal(err)
	}
	if u == nil || u.Host != "secure.internal:3128" {
		t.Errorf("https request should use the https proxy, got %v", u)
	}
}

func TestNewProxyFunc_NoProxyBypass(t *testing.T) {
	clearProxyEnv(t)
	proxy := NewProxyFunc("http://proxy.internal:3128", "", "localhost,api.openai.com")

	req, err := http.NewRequest(http.MethodGet, "http://api.openai.com/v1/chat", nil)
	if err != nil {
		t.Fatal(err)
	}
	u, err := proxy(req)
	if err != nil {
		t.Fatal(err)
	}
	if u != nil {
		t.Errorf("NoProxy host should bypass the proxy, got %v", u)
	}
}
