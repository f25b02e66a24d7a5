// Soul Sense TUI - A terminal companion for daily mood check-ins.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/soulsense/soulsense-tui/internal/audit"
	"github.com/soulsense/soulsense-tui/internal/auth"
	"github.com/soulsense/soulsense-tui/internal/config"
	"github.com/soulsense/soulsense-tui/internal/idle"
	"github.com/soulsense/soulsense-tui/internal/mood"
	"github.com/soulsense/soulsense-tui/internal/store"
	"github.com/soulsense/soulsense-tui/internal/ui/components"
	"github.com/soulsense/soulsense-tui/internal/ui/styles"
	"github.com/soulsense/soulsense-tui/internal/util"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async callbacks (idle monitor, config
// watcher) that need to push messages into the Bubble Tea loop.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func sendMsg(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func main() {
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--version", "-v", "version":
			fmt.Printf("soulsense %s (%s, built %s)\n", Version, GitCommit, BuildDate)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "soulsense requires an interactive terminal")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := config.EnsureConfigDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)
		os.Exit(1)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving database path: %v\n", err)
		os.Exit(1)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	auditPath, err := cfg.AuditLogPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving audit log path: %v\n", err)
		os.Exit(1)
	}
	auditLog, err := audit.NewLogger(auditPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening audit log: %v\n", err)
		os.Exit(1)
	}
	auditLog.SetEnabled(cfg.Security.AuditEnabled)
	defer auditLog.Close()

	m := newAppModel(cfg, st, auditLog)

	// Hot-reload session settings when the config file changes on disk.
	if cfgPath, err := config.ConfigPath(); err == nil {
		if w, werr := config.NewWatcher(cfgPath, func(next *config.Config) {
			sendMsg(configReloadedMsg{cfg: next})
		}); werr == nil {
			defer w.Close()
		}
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running soulsense: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`soulsense - terminal mood journal

Usage:
  soulsense            Start the TUI
  soulsense version    Print version information

Configuration lives in ~/.soulsense/config.toml and can be overridden
with SOULSENSE_* environment variables.`)
}

// =============================================================================
// MESSAGES
// =============================================================================

type tickMsg time.Time

// sessionWarningMsg carries the countdown value from the idle monitor.
type sessionWarningMsg struct {
	seconds int
}

type sessionWarningClearedMsg struct{}

type sessionExpiredMsg struct{}

// navigateMsg switches screens; the idle monitor's Navigator sends it
// with the login path after a forced logout.
type navigateMsg struct {
	path string
}

type configReloadedMsg struct {
	cfg *config.Config
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// teaNavigator routes the monitor's redirect into the event loop.
type teaNavigator struct{}

func (teaNavigator) Redirect(path string) {
	sendMsg(navigateMsg{path: path})
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// screen identifies the active view.
type screen int

const (
	screenLogin screen = iota
	screenEnroll
	screenMFA
	screenDashboard
	screenCheckin
)

// checkinStep tracks progress through the check-in flow.
type checkinStep int

const (
	stepScore checkinStep = iota
	stepNote
	stepTags
)

type appModel struct {
	cfg      *config.Config
	store    *store.Store
	auth     *auth.Manager
	journal  *mood.Journal
	auditLog *audit.Logger

	hub     *idle.Hub
	monitor *idle.Monitor
	toasts  *components.ToastManager

	overlay   components.TimeoutOverlay
	statusbar components.StatusBar

	screen       screen
	width        int
	height       int
	registerMode bool

	usernameInput textinput.Model
	passwordInput textinput.Model
	codeInput     textinput.Model
	noteInput     textinput.Model
	tagsInput     textinput.Model

	// Check-in flow state
	step  checkinStep
	score int

	// Pending MFA enrollment details shown after registration.
	enrollSecret string
	enrollURL    string

	// Dashboard data
	stats    mood.Stats
	recent   []store.MoodEntry
	selected int
}

func newAppModel(cfg *config.Config, st *store.Store, auditLog *audit.Logger) *appModel {
	authMgr := auth.NewManager(st,
		auth.WithMaxAttempts(cfg.Security.MaxLoginAttempts),
		auth.WithLockoutDuration(cfg.LockoutDuration()),
	)

	m := &appModel{
		cfg:       cfg,
		store:     st,
		auth:      authMgr,
		journal:   mood.NewJournal(st),
		auditLog:  auditLog,
		hub:       idle.NewHub(),
		toasts:    components.NewToastManager(),
		overlay:   components.NewTimeoutOverlay(),
		statusbar: components.NewStatusBar(),
		screen:    screenLogin,
		score:     5,
	}
	m.monitor = m.buildMonitor(cfg)

	m.usernameInput = newInput("username", 32)
	m.usernameInput.Focus()
	m.passwordInput = newInput("password", 64)
	m.passwordInput.EchoMode = textinput.EchoPassword
	m.codeInput = newInput("6-digit code", 6)
	m.noteInput = newInput("how was your day? (optional)", mood.MaxNoteLength)
	m.tagsInput = newInput("tags, comma separated (optional)", 120)

	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 36
	return in
}

// buildMonitor wires a monitor from the current session settings. The
// monitor is rebuilt on config reload, so timing changes apply without
// a restart.
func (m *appModel) buildMonitor(cfg *config.Config) *idle.Monitor {
	return idle.NewMonitor(m.auth, idle.Config{
		Enabled:     cfg.Session.Enabled,
		IdleTimeout: cfg.IdleTimeout(),
		WarningLead: cfg.WarningLead(),
		OnWarning: func(seconds int) {
			sendMsg(sessionWarningMsg{seconds: seconds})
		},
		OnWarningCleared: func() {
			sendMsg(sessionWarningClearedMsg{})
		},
		OnTimeout: func() {
			sendMsg(sessionExpiredMsg{})
		},
	},
		idle.WithNotifier(m.toasts),
		idle.WithNavigator(teaNavigator{}),
		idle.WithActivitySource(m.hub),
	)
}

func (m *appModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd())
}

// =============================================================================
// UPDATE
// =============================================================================

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.overlay.SetSize(msg.Width, msg.Height)
		m.statusbar.SetWidth(msg.Width)
		return m, nil

	case tickMsg:
		m.toasts.Prune()
		m.statusbar.SetSession(m.monitor.Snapshot())
		return m, tickCmd()

	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseMotion:
			m.hub.Emit(idle.EventPointerMove)
		case tea.MouseWheelUp, tea.MouseWheelDown:
			m.hub.Emit(idle.EventWheel)
		default:
			m.hub.Emit(idle.EventPointerPress)
		}
		return m, nil

	case tea.KeyMsg:
		m.hub.Emit(idle.EventKeyPress)
		return m.handleKey(msg)

	case components.SessionExtendedMsg:
		m.monitor.ContinueSession()
		return m, nil

	case sessionWarningMsg:
		m.overlay.ShowWarning(msg.seconds)
		return m, nil

	case sessionWarningClearedMsg:
		if !m.overlay.IsExpired() {
			m.overlay.Hide()
		}
		return m, nil

	case sessionExpiredMsg:
		m.overlay.ShowExpired()
		m.logAudit("SESSION_EXPIRED", map[string]string{"reason": "idle"})
		return m, nil

	case navigateMsg:
		if msg.path == idle.LoginPath {
			m.resetToLogin()
		}
		return m, nil

	case configReloadedMsg:
		m.applyConfig(msg.cfg)
		return m, nil
	}

	return m, m.updateInputs(msg)
}

func (m *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The expired notice holds the screen until acknowledged.
	if m.overlay.IsVisible() && m.overlay.IsExpired() {
		m.overlay.Hide()
		return m, nil
	}

	// Any key during the warning extends the session.
	if m.overlay.IsVisible() {
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		return m, cmd
	}

	if msg.Type == tea.KeyCtrlC {
		m.logAudit("APP_EXIT", nil)
		m.monitor.Stop()
		return m, tea.Quit
	}

	switch m.screen {
	case screenLogin:
		return m.handleLoginKey(msg)
	case screenEnroll:
		return m.handleEnrollKey(msg)
	case screenMFA:
		return m.handleMFAKey(msg)
	case screenDashboard:
		return m.handleDashboardKey(msg)
	case screenCheckin:
		return m.handleCheckinKey(msg)
	}
	return m, nil
}

func (m *appModel) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, in := range []*textinput.Model{
		&m.usernameInput, &m.passwordInput, &m.codeInput, &m.noteInput, &m.tagsInput,
	} {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// LOGIN & REGISTRATION
// =============================================================================

func (m *appModel) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab:
		if m.usernameInput.Focused() {
			m.usernameInput.Blur()
			m.passwordInput.Focus()
		} else {
			m.passwordInput.Blur()
			m.usernameInput.Focus()
		}
		return m, nil

	case tea.KeyCtrlR:
		m.registerMode = !m.registerMode
		return m, nil

	case tea.KeyEnter:
		if m.usernameInput.Focused() {
			m.usernameInput.Blur()
			m.passwordInput.Focus()
			return m, nil
		}
		return m.submitCredentials()
	}

	var cmd tea.Cmd
	if m.usernameInput.Focused() {
		m.usernameInput, cmd = m.usernameInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m *appModel) submitCredentials() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.usernameInput.Value())
	password := m.passwordInput.Value()

	if m.registerMode {
		if err := m.auth.Register(username, password); err != nil {
			m.toasts.Error(friendlyAuthError(err))
			return m, nil
		}
		m.logAudit("USER_REGISTERED", map[string]string{"username": username})
		m.toasts.Success("Account created")
		m.registerMode = false
	}

	if err := m.auth.Login(username, password); err != nil {
		m.logAudit("LOGIN_FAILED", map[string]string{"username": username})
		m.toasts.Error(friendlyAuthError(err))
		return m, nil
	}

	// Fresh registrations get offered TOTP enrollment; returning users
	// with an enrolled secret must verify before the session opens.
	if m.cfg.Security.MFAEnabled {
		if m.auth.IsTOTPEnrolled(username) {
			m.screen = screenMFA
			m.codeInput.SetValue("")
			m.codeInput.Focus()
			return m, nil
		}
		secret, url, err := m.auth.EnrollTOTP(username)
		if err == nil {
			m.enrollSecret = secret
			m.enrollURL = url
			m.screen = screenEnroll
			return m, nil
		}
		m.toasts.Error("Could not enroll MFA: " + err.Error())
	}

	return m.completeLogin()
}

func (m *appModel) handleEnrollKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		m.enrollSecret = ""
		m.enrollURL = ""
		return m.completeLogin()
	}
	return m, nil
}

func (m *appModel) handleMFAKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.auth.Logout()
		m.resetToLogin()
		return m, nil

	case tea.KeyEnter:
		username := strings.TrimSpace(m.usernameInput.Value())
		if err := m.auth.VerifyTOTP(username, strings.TrimSpace(m.codeInput.Value())); err != nil {
			m.logAudit("MFA_FAILED", map[string]string{"username": username})
			m.toasts.Error(friendlyAuthError(err))
			m.codeInput.SetValue("")
			return m, nil
		}
		return m.completeLogin()
	}

	var cmd tea.Cmd
	m.codeInput, cmd = m.codeInput.Update(msg)
	return m, cmd
}

func (m *appModel) completeLogin() (tea.Model, tea.Cmd) {
	user, ok := m.auth.CurrentUser()
	if !ok {
		m.resetToLogin()
		return m, nil
	}

	m.logAudit("LOGIN_SUCCESS", nil)
	m.statusbar.SetUser(user.Username)
	m.monitor.Start()
	m.refreshDashboard()
	m.screen = screenDashboard
	m.passwordInput.SetValue("")
	m.codeInput.SetValue("")
	return m, nil
}

func friendlyAuthError(err error) string {
	switch {
	case errors.Is(err, auth.ErrUsernameTooShort):
		return fmt.Sprintf("Username must be at least %d characters", auth.MinUsernameLength)
	case errors.Is(err, auth.ErrPasswordTooShort):
		return fmt.Sprintf("Password must be at least %d characters", auth.MinPasswordLength)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, auth.ErrLockedOut):
		return "Account temporarily locked. Try again later"
	case errors.Is(err, auth.ErrRateLimited):
		return "Too many attempts. Slow down"
	case errors.Is(err, auth.ErrOTPInvalid):
		return "Invalid code"
	case errors.Is(err, auth.ErrOTPTooManyAttempts):
		return "Too many codes tried. Wait a minute"
	case errors.Is(err, store.ErrUserExists):
		return "That username is taken"
	default:
		return err.Error()
	}
}

// =============================================================================
// DASHBOARD
// =============================================================================

func (m *appModel) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.logAudit("APP_EXIT", nil)
		m.monitor.Stop()
		return m, tea.Quit

	case "l":
		m.logAudit("LOGOUT", nil)
		m.monitor.Stop()
		m.auth.Logout()
		m.resetToLogin()
		return m, nil

	case "c":
		m.screen = screenCheckin
		m.step = stepScore
		m.score = 5
		m.noteInput.SetValue("")
		m.tagsInput.SetValue("")
		return m, nil

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down", "j":
		if m.selected < len(m.recent)-1 {
			m.selected++
		}
		return m, nil

	case "d":
		if m.selected < len(m.recent) {
			entry := m.recent[m.selected]
			if user, ok := m.auth.CurrentUser(); ok {
				if err := m.journal.Delete(user.ID, entry.ID); err != nil {
					m.toasts.Error("Could not delete entry")
				} else {
					m.logAudit("MOOD_DELETED", map[string]string{"entry": entry.ID})
					m.toasts.Success("Entry deleted")
					m.refreshDashboard()
				}
			}
		}
		return m, nil
	}
	return m, nil
}

func (m *appModel) refreshDashboard() {
	user, ok := m.auth.CurrentUser()
	if !ok {
		return
	}
	if stats, err := m.journal.Stats(user.ID); err == nil {
		m.stats = stats
		m.statusbar.SetStreak(stats.StreakDays)
	}
	if recent, err := m.journal.Recent(user.ID, 7); err == nil {
		m.recent = recent
	}
	if m.selected >= len(m.recent) {
		m.selected = 0
	}
}

// =============================================================================
// CHECK-IN
// =============================================================================

func (m *appModel) handleCheckinKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.screen = screenDashboard
		m.noteInput.Blur()
		m.tagsInput.Blur()
		return m, nil
	}

	switch m.step {
	case stepScore:
		switch msg.String() {
		case "left", "h":
			if m.score > 1 {
				m.score--
			}
		case "right", "l":
			if m.score < 10 {
				m.score++
			}
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.score = int(msg.String()[0] - '0')
		case "0":
			m.score = 10
		case "enter":
			m.step = stepNote
			m.noteInput.Focus()
		}
		return m, nil

	case stepNote:
		if msg.Type == tea.KeyEnter {
			m.step = stepTags
			m.noteInput.Blur()
			m.tagsInput.Focus()
			return m, nil
		}
		var cmd tea.Cmd
		m.noteInput, cmd = m.noteInput.Update(msg)
		return m, cmd

	case stepTags:
		if msg.Type == tea.KeyEnter {
			return m.submitCheckin()
		}
		var cmd tea.Cmd
		m.tagsInput, cmd = m.tagsInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *appModel) submitCheckin() (tea.Model, tea.Cmd) {
	user, ok := m.auth.CurrentUser()
	if !ok {
		m.resetToLogin()
		return m, nil
	}

	var tags []string
	for _, t := range strings.Split(m.tagsInput.Value(), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	entry, err := m.journal.Add(user.ID, m.score, m.noteInput.Value(), tags)
	if err != nil {
		m.toasts.Error("Could not save check-in: " + err.Error())
		return m, nil
	}

	m.logAudit("MOOD_RECORDED", map[string]string{
		"entry": entry.ID,
		"score": fmt.Sprintf("%d", entry.Score),
	})
	m.toasts.Success("Check-in saved")
	m.tagsInput.Blur()
	m.refreshDashboard()
	m.screen = screenDashboard
	return m, nil
}

// =============================================================================
// SESSION HELPERS
// =============================================================================

func (m *appModel) resetToLogin() {
	m.screen = screenLogin
	m.registerMode = false
	m.statusbar.SetUser("")
	m.statusbar.SetStreak(0)
	m.recent = nil
	m.stats = mood.Stats{}
	m.selected = 0

	m.passwordInput.SetValue("")
	m.codeInput.SetValue("")
	m.passwordInput.Blur()
	m.codeInput.Blur()
	m.usernameInput.Focus()
}

// applyConfig swaps in reloaded settings and rebuilds the idle monitor
// so new timeouts take effect immediately.
func (m *appModel) applyConfig(cfg *config.Config) {
	m.cfg = cfg
	m.auditLog.SetEnabled(cfg.Security.AuditEnabled)

	wasStarted := m.monitor.Started()
	m.monitor.Stop()
	m.monitor = m.buildMonitor(cfg)
	if wasStarted && m.auth.IsAuthenticated() {
		m.monitor.Start()
	}
	m.toasts.Status("Settings reloaded")
}

func (m *appModel) logAudit(eventType string, metadata map[string]string) {
	username := "-"
	if user, ok := m.auth.CurrentUser(); ok {
		username = user.Username
	}
	if err := m.auditLog.Log(eventType, username, metadata); err != nil {
		m.toasts.Error("Audit log write failed")
	}
}

// =============================================================================
// VIEW
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(styles.Primary).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	hintStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(styles.Overlay).
			Padding(1, 2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(styles.Primary).
			Bold(true)
)

func (m *appModel) View() string {
	if m.overlay.IsVisible() {
		return m.overlay.View()
	}

	var body string
	switch m.screen {
	case screenLogin:
		body = m.viewLogin()
	case screenEnroll:
		body = m.viewEnroll()
	case screenMFA:
		body = m.viewMFA()
	case screenDashboard:
		body = m.viewDashboard()
	case screenCheckin:
		body = m.viewCheckin()
	}

	sections := []string{body}
	if toasts := m.toasts.View(m.width - 2); toasts != "" {
		sections = append(sections, toasts)
	}
	if m.cfg.UI.ShowStatusBar {
		sections = append(sections, m.statusbar.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *appModel) viewLogin() string {
	mode := "Sign in"
	hint := "enter submit · tab switch field · ctrl+r create account · ctrl+c quit"
	if m.registerMode {
		mode = "Create account"
		hint = "enter submit · tab switch field · ctrl+r back to sign in · ctrl+c quit"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Soul Sense"),
		labelStyle.Render("How are you feeling today?"),
		"",
		labelStyle.Render(mode),
		"",
		m.usernameInput.View(),
		m.passwordInput.View(),
		"",
		hintStyle.Render(hint),
	)
	return m.centered(boxStyle.Render(content))
}

func (m *appModel) viewEnroll() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Set up two-factor authentication"),
		"",
		labelStyle.Render("Add this secret to your authenticator app:"),
		"",
		selectedStyle.Render(m.enrollSecret),
		"",
		hintStyle.Render(m.enrollURL),
		"",
		hintStyle.Render("press enter to continue"),
	)
	return m.centered(boxStyle.Render(content))
}

func (m *appModel) viewMFA() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Two-factor authentication"),
		"",
		labelStyle.Render("Enter the code from your authenticator app"),
		"",
		m.codeInput.View(),
		"",
		hintStyle.Render("enter verify · esc cancel"),
	)
	return m.centered(boxStyle.Render(content))
}

func (m *appModel) viewDashboard() string {
	var lines []string
	lines = append(lines, titleStyle.Render("Your week"))
	lines = append(lines, "")

	if m.stats.EntryCount == 0 {
		lines = append(lines, labelStyle.Render("No check-ins yet. Press c to record your first one."))
	} else {
		avgColor := styles.MoodColor(int(m.stats.WeeklyAverage + 0.5))
		lines = append(lines, fmt.Sprintf("%s %s   %s %d   %s %s",
			labelStyle.Render("avg"),
			lipgloss.NewStyle().Foreground(avgColor).Bold(true).Render(fmt.Sprintf("%.1f", m.stats.WeeklyAverage)),
			labelStyle.Render("check-ins"),
			m.stats.EntryCount,
			labelStyle.Render("mostly"),
			m.stats.Dominant,
		))
		if m.stats.StreakDays > 0 {
			lines = append(lines, labelStyle.Render(fmt.Sprintf("%d day streak - keep it going", m.stats.StreakDays)))
		}
	}

	lines = append(lines, "")
	lines = append(lines, labelStyle.Render("Recent check-ins"))
	if len(m.recent) == 0 {
		lines = append(lines, hintStyle.Render("  nothing in the last 7 days"))
	}
	for i, e := range m.recent {
		marker := "  "
		line := fmt.Sprintf("%s %s %2d %s",
			e.CreatedAt.Local().Format("Mon 15:04"),
			lipgloss.NewStyle().Foreground(styles.MoodColor(e.Score)).Render(mood.Label(e.Score)),
			e.Score,
			util.TruncateRunes(e.Note, 40),
		)
		if i == m.selected {
			marker = selectedStyle.Render("> ")
			line = selectedStyle.Render(line)
		}
		lines = append(lines, marker+line)
	}

	lines = append(lines, "")
	lines = append(lines, hintStyle.Render("c check in · d delete · j/k move · l log out · q quit"))

	return m.centered(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m *appModel) viewCheckin() string {
	var lines []string
	lines = append(lines, titleStyle.Render("Daily check-in"))
	lines = append(lines, "")

	// Score scale with the current pick highlighted.
	var scale []string
	for s := 1; s <= 10; s++ {
		cell := fmt.Sprintf("%d", s)
		if s == m.score {
			cell = lipgloss.NewStyle().
				Foreground(styles.TextInverse).
				Background(styles.MoodColor(s)).
				Bold(true).
				Render(" " + cell + " ")
		}
		scale = append(scale, cell)
	}
	lines = append(lines, labelStyle.Render("How do you feel? (1-10)"))
	lines = append(lines, strings.Join(scale, " "))
	lines = append(lines, lipgloss.NewStyle().
		Foreground(styles.MoodColor(m.score)).
		Render(mood.Label(m.score)))
	lines = append(lines, "")

	if m.step >= stepNote {
		lines = append(lines, m.noteInput.View())
	}
	if m.step >= stepTags {
		lines = append(lines, m.tagsInput.View())
	}

	lines = append(lines, "")
	switch m.step {
	case stepScore:
		lines = append(lines, hintStyle.Render("1-0 or arrows pick score · enter next · esc cancel"))
	case stepNote:
		lines = append(lines, hintStyle.Render("enter next · esc cancel"))
	default:
		lines = append(lines, hintStyle.Render("enter save · esc cancel"))
	}

	return m.centered(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m *appModel) centered(content string) string {
	width := m.width
	if width == 0 {
		width = 80
	}
	height := m.height - 1
	if height <= 0 {
		height = 23
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
