package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "  Casamento em Lisboa  ", "Casamento em Lisboa"},
		{"tags removed", "<b>Olá</b> <i>mundo</i>", "Olá mundo"},
		{"script content dropped", "<script>alert(1)</script>Fado", "Fado"},
		{"inline handler element", `<img src=x onerror="alert(1)">Jazz`, "Jazz"},
		{"nested scheme collapsed", "javajavascript:script:alert(1)", "alert(1)"},
		{"entities kept escaped", "Rock &amp; Roll", "Rock &amp; Roll"},
		{"less than in prose", "1 < 2", "1 < 2"},
		{"style dropped", "<style>body{}</style><p>Texto</p>", "Texto"},
		{"unclosed tag kept as text", "Quero jazz <e blues no casamento", "Quero jazz <e blues no casamento"},
		{"unclosed tag without spaces", "a<b", "a<b"},
		{"unclosed tag after markup", "<b>Fado</b> e <guitarra", "Fado e <guitarra"},
		{"handler text stripped", "click onmouseover=alert(1)", "click alert(1)"},
		{"handler with spacing", "x ONCLICK = y", "x  y"},
		{"word ending in on kept", "telefone=912345678", "telefone=912345678"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"allowed formatting", "<p><strong>Olá</strong> <em>Ana</em></p>", "<p><strong>Olá</strong> <em>Ana</em></p>"},
		{"disallowed tag dropped", "<div><b>x</b></div>", "<b>x</b>"},
		{"script dropped", "<p>a<script>alert(1)</script>b</p>", "<p>ab</p>"},
		{"link attrs filtered", `<a href="https://musicosbooking.pt" onclick="x()" target="_blank">site</a>`, `<a href="https://musicosbooking.pt" target="_blank">site</a>`},
		{"javascript href dropped", `<a href="javascript:alert(1)">x</a>`, "<a>x</a>"},
		{"text escaped", "<p>5 &lt; 6 & \"aspas\"</p>", "<p>5 &lt; 6 &amp; &#34;aspas&#34;</p>"},
		{"br self closing", "linha<br/>linha", "linha<br />linha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeHTML(tt.in))
		})
	}
}
