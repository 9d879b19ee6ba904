package bootstrap

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	checkininadapter "moodquest/internal/modules/checkin/adapter/in"
	checkinoutadapter "moodquest/internal/modules/checkin/adapter/out"
	checkinin "moodquest/internal/modules/checkin/port/in"
	checkinusecase "moodquest/internal/modules/checkin/usecase"
	focusinadapter "moodquest/internal/modules/focus/adapter/in"
	focusoutadapter "moodquest/internal/modules/focus/adapter/out"
	focusin "moodquest/internal/modules/focus/port/in"
	focusservice "moodquest/internal/modules/focus/service"
	focususecase "moodquest/internal/modules/focus/usecase"
	"moodquest/internal/platform/clock"
	"moodquest/internal/platform/config"
	"moodquest/internal/platform/id"
	uiapp "moodquest/internal/ui/app"
)

type App struct {
	FocusCLI   focusinadapter.CLIHandler
	CheckinCLI checkininadapter.CLIHandler

	focus   focusin.Usecase
	checkin checkinin.Sequencer
	cache   *focusoutadapter.MemorySessionCache
	history *focusoutadapter.SQLiteHistoryStore
	clock   clock.Clock
	cfg     config.Config
}

func New(cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.RandomHex{}

	sessionAPI := focusoutadapter.NewHTTPSessionAPI(cfg.APIURL, cfg.APIToken, ids)
	cache := focusoutadapter.NewMemorySessionCache()
	history, err := focusoutadapter.NewSQLiteHistoryStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new history store: %w", err)
	}

	focusSvc := focusservice.NewFocusService(clk)
	focusUC := focususecase.NewInteractor(focusSvc, sessionAPI, cache, history)

	checkinAPI := checkinoutadapter.NewHTTPCheckinAPI(cfg.APIURL, cfg.APIToken, ids)
	checkinUC := checkinusecase.NewSequencer(clk, checkinAPI, checkinAPI, checkinAPI)

	return &App{
		FocusCLI:   focusinadapter.NewCLIHandler(focusUC),
		CheckinCLI: checkininadapter.NewCLIHandler(checkinUC),
		focus:      focusUC,
		checkin:    checkinUC,
		cache:      cache,
		history:    history,
		clock:      clk,
		cfg:        cfg,
	}, nil
}

func (a *App) Close() error {
	return a.history.Close()
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.focus, app.checkin, app.cache, app.clock, app.cfg.RefreshEvery())
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())
	_, err := program.Run()
	return err
}
