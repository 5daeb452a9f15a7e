package datepick

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"intrabar/pkg/timing"
)

// 时段调整步长（分钟）
const sessionStep = 5

var (
	selectedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 1).
			Bold(true)

	slotStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#006600")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF00"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// keyMap 键位绑定
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Accept key.Binding
	Quit   key.Binding
}

// ShortHelp 实现 help.KeyMap 接口
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Accept, k.Quit}
}

// FullHelp 实现 help.KeyMap 接口
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Left, k.Right}, {k.Accept, k.Quit}}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "上一项"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "下一项"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "前移"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "后移"),
		),
		Accept: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "确认"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "取消"),
		),
	}
}

// Model 选择器的终端交互模型
// 行布局: 前 cnt 行是日期槽位，随后两行是时段的开盘/收盘时刻
type Model struct {
	picker   *Picker
	cursor   int
	keys     keyMap
	help     help.Model
	accepted bool
	quitting bool
}

// NewModel 创建交互模型
func NewModel(picker *Picker) Model {
	return Model{
		picker: picker,
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
}

// Accepted 用户是否按确认键退出
func (m Model) Accepted() bool {
	return m.accepted
}

// Picker 返回底层选择器
func (m Model) Picker() *Picker {
	return m.picker
}

// Init 实现 tea.Model 接口
func (m Model) Init() tea.Cmd {
	return nil
}

// rowCount 总行数 = 日期槽位 + 开盘行 + 收盘行
func (m Model) rowCount() int {
	return m.picker.Count() + 2
}

// Update 实现 tea.Model 接口
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Accept):
		m.accepted = true
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < m.rowCount()-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, m.keys.Left):
		m.adjust(-1)

	case key.Matches(keyMsg, m.keys.Right):
		m.adjust(1)
	}

	return m, nil
}

// adjust 调整当前行: 日期行按交易日移动，时段行按固定步长移动
func (m *Model) adjust(direction int) {
	cnt := m.picker.Count()

	if m.cursor < cnt {
		// 移动失败（越界/未来日期）时保持原值
		_ = m.picker.ShiftDate(m.cursor, direction)
		return
	}

	session := m.picker.TimeRange()
	open, close := session.Open, session.Close
	if m.cursor == cnt {
		open = shiftTimeOfDay(open, direction*sessionStep)
	} else {
		close = shiftTimeOfDay(close, direction*sessionStep)
	}
	_ = m.picker.SetTimeRange(open, close)
}

// shiftTimeOfDay 将时刻移动指定分钟数，限制在一天之内
func shiftTimeOfDay(t timing.TimeOfDay, minutes int) timing.TimeOfDay {
	total := t.Hour*60 + t.Minute + minutes
	if total < 0 {
		total = 0
	}
	if total > 23*60+59 {
		total = 23*60 + 59
	}
	return timing.TimeOfDay{Hour: total / 60, Minute: total % 60}
}

// View 实现 tea.Model 接口
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("选择交易日期:"))
	b.WriteString("\n")

	var slots []string
	for i, d := range m.picker.Dates() {
		label := d.Format("2006-01-02")
		if i == m.cursor {
			slots = append(slots, selectedStyle.Render(label))
		} else {
			slots = append(slots, slotStyle.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, slots...))
	b.WriteString("\n")

	b.WriteString(titleStyle.Render("调整时段范围:"))
	b.WriteString("\n")

	cnt := m.picker.Count()
	session := m.picker.TimeRange()
	openLabel := fmt.Sprintf("开盘 %s", session.Open)
	closeLabel := fmt.Sprintf("收盘 %s", session.Close)

	openCell := slotStyle.Render(openLabel)
	closeCell := slotStyle.Render(closeLabel)
	if m.cursor == cnt {
		openCell = selectedStyle.Render(openLabel)
	}
	if m.cursor == cnt+1 {
		closeCell = selectedStyle.Render(closeLabel)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, openCell, closeCell))
	b.WriteString("\n")

	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	b.WriteString("\n")
	return b.String()
}

// Run 运行交互选择器，阻塞直到用户确认或取消
// 返回 false 表示用户取消了选择
func Run(picker *Picker) (bool, error) {
	program := tea.NewProgram(NewModel(picker))
	final, err := program.Run()
	if err != nil {
		return false, fmt.Errorf("run picker UI: %w", err)
	}

	model, ok := final.(Model)
	if !ok {
		return false, fmt.Errorf("unexpected model type %T", final)
	}
	return model.Accepted(), nil
}
