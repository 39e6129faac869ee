package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const drawTable = `<html><body>
<div class="record">
  <div style="text-align: center">Period</div>
  <div style="text-align: center">Number</div>
  <div style="text-align: center">Big Small</div>
  <div style="text-align: center">Color</div>
  <div style="text-align: center"> 20261018100010422 </div>
  <div style="text-align: center"><span>pending</span></div>
  <div style="text-align: center">pending</div>
  <div style="text-align: center">pending</div>
  <div style="text-align: center">20261018100010421</div>
  <div style="text-align: center"><b>7</b></div>
  <div style="text-align: center">Big</div>
  <div style="text-align: center">Green</div>
  <div style="text-align: left">footer</div>
</div>
</body></html>`

func TestCellTexts(t *testing.T) {
	cells, err := CellTexts(drawTable, `div[style*="text-align: center"]`)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Period", "Number", "Big Small", "Color",
		"20261018100010422", "pending", "pending", "pending",
		"20261018100010421", "7", "Big", "Green",
	}, cells)
}

func TestCellTexts_NoMatch(t *testing.T) {
	cells, err := CellTexts(drawTable, "td.missing")
	require.NoError(t, err)
	assert.Empty(t, cells)
}
