package delivery

import "testing"

func TestDeriveSocketEndpoint(t *testing.T) {
	tests := []struct {
		target  string
		path    string
		want    string
		wantErr bool
	}{
		{"https://test.lab/", "", "wss://test.lab/websocket", false},
		{"http://victim.local/app", "websocket", "ws://victim.local/app/websocket", false},
		{"http://victim.local:8080/app/?q=1#frag", "/ws", "ws://victim.local:8080/app/ws", false},
		{"wss://already.socket/", "live", "wss://already.socket/live", false},
		{"ftp://files.lab/", "", "", true},
		{"https:///nohost", "", "", true},
		{"::not a url", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := DeriveSocketEndpoint(tt.target, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOriginOf(t *testing.T) {
	if got := OriginOf("https://test.lab:8443/app/page?x=1"); got != "https://test.lab:8443" {
		t.Fatalf("unexpected origin %q", got)
	}
	if got := OriginOf("about:blank"); got != "" {
		t.Fatalf("opaque URL should have no origin, got %q", got)
	}
}
