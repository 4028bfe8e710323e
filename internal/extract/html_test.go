package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibleText(t *testing.T) {
	page := `<!DOCTYPE html>
	<html>
	<head><title>Freight update</title><style>p { color: red }</style></head>
	<body>
		<nav>Home | Markets</nav>
		<p>Container rates fell 15% this week.</p>
		<script>var tracking = "ignore me";</script>
		<div>Carriers blanked <b>six</b> sailings.</div>
		<footer>Copyright</footer>
	</body>
	</html>`

	text, err := VisibleText(page)
	require.NoError(t, err)

	assert.Contains(t, text, "Container rates fell 15% this week.")
	assert.Contains(t, text, "Carriers blanked six sailings.")
	assert.NotContains(t, text, "ignore me")
	assert.NotContains(t, text, "Home | Markets")
	assert.NotContains(t, text, "Copyright")
	assert.NotContains(t, text, "color: red")

	// Paragraphs stay separated so sentence splitting sees the boundary
	assert.Equal(t, 2, len(strings.Split(text, "\n\n")))
}

func TestHTMLTitle(t *testing.T) {
	assert.Equal(t, "Freight update", HTMLTitle("<html><head><title> Freight update </title></head></html>"))
	assert.Equal(t, "", HTMLTitle("<html><body>No title</body></html>"))
}

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML("text/html; charset=utf-8", "anything"))
	assert.True(t, IsHTML("", "  <!DOCTYPE html><html></html>"))
	assert.True(t, IsHTML("", "<html><body></body></html>"))
	assert.False(t, IsHTML("text/plain", "Plain article body."))
	assert.False(t, IsHTML("", "Plain article body with <b>inline</b> markup."))
}
