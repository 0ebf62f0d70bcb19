package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRichPolicy(t *testing.T) {
	p := DefaultSanitizePolicies()

	in := `<h2>Title</h2><p onclick="x()">text</p><script>alert(1)</script>` +
		`<img src="/uploads/20240101/a.png" alt="pic">` +
		`<video src="/uploads/20240101/b.mp4" controls></video>` +
		`<a href="javascript:alert(1)">bad</a>`
	out := p.Rich.Sanitize(in)

	assert.Contains(t, out, "<h2>Title</h2>")
	assert.Contains(t, out, `src="/uploads/20240101/a.png"`)
	assert.Contains(t, out, "<video")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "javascript:")
}

func TestPlainPolicyStripsAllMarkup(t *testing.T) {
	p := DefaultSanitizePolicies()

	out := p.Plain.Sanitize(`see <b>this</b> <img src="x"> <a href="/y">link</a>`)
	assert.Equal(t, "see this  link", out)
}
