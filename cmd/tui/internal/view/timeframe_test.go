package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTimeframe_Range(t *testing.T) {
	// Wednesday.
	now := time.Date(2026, time.March, 11, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		tf       Timeframe
		wantFrom *time.Time
		wantTo   *time.Time
	}{
		{name: "Today", tf: TimeframeToday, wantFrom: new(day(2026, 3, 11)), wantTo: new(day(2026, 3, 11))},
		{name: "ThisWeek", tf: TimeframeThisWeek, wantFrom: new(day(2026, 3, 9)), wantTo: new(day(2026, 3, 11))},
		{name: "ThisMonth", tf: TimeframeThisMonth, wantFrom: new(day(2026, 3, 1)), wantTo: new(day(2026, 3, 11))},
		{name: "LastMonth", tf: TimeframeLastMonth, wantFrom: new(day(2026, 2, 1)), wantTo: new(day(2026, 2, 28))},
		{name: "All", tf: TimeframeAll},
		{name: "Custom", tf: TimeframeCustom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := tt.tf.Range(now)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantTo, to)
		})
	}
}

func TestTimeframe_RangeSundayStartsOnMonday(t *testing.T) {
	from, to := TimeframeThisWeek.Range(time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC))

	require.NotNil(t, from)
	assert.Equal(t, day(2026, 3, 9), *from)
	assert.Equal(t, day(2026, 3, 15), *to)
}

func typeRunes(m TimeframePicker, s string) TimeframePicker {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	return m
}

func TestTimeframePicker_Custom(t *testing.T) {
	m := NewTimeframePicker(TimeframeCustom)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.IsSelecting())

	m = typeRunes(m, "2026-03-10")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeRunes(m, "2026-03-01")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Error(t, m.err)

	m.endInput.SetValue("2026-03-31")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(TimeframeSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, "2026-03-10 to 2026-03-31", msg.Label)

	filter := msg.Apply(bill.ListFilter{})
	assert.Equal(t, 10, filter.From.Day())
	assert.Equal(t, 31, filter.To.Day())
}

func TestBillsModel_Filter(t *testing.T) {
	m := NewBillsModel(nil, CommonModel{})

	filter := m.Filter()
	assert.Nil(t, filter.CustomerType)
	assert.Nil(t, filter.Status)
	assert.Nil(t, filter.From)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})

	filter = next.(BillsModel).Filter()
	require.NotNil(t, filter.CustomerType)
	assert.Equal(t, tariff.Domestic, *filter.CustomerType)
	require.NotNil(t, filter.Status)
	assert.Equal(t, bill.StatusPaid, *filter.Status)
}

func TestBillsModel_ToggleRequiresAdmin(t *testing.T) {
	m := NewBillsModel(nil, CommonModel{})
	m.loading = false
	m.rows = []*bill.Bill{{Number: "BILL00001", Status: bill.StatusUnpaid}}
	m.refreshTable()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
	assert.Contains(t, next.(BillsModel).status, "Only admins")
}
