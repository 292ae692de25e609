package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"TipFusion/internal/domain/models"
	xhttp "TipFusion/pkg/http"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	base   string
	client *xhttp.Client
}

func newAPI(base string, timeout time.Duration) *apiClient {
	return &apiClient{base: base, client: xhttp.NewClient(xhttp.WithTimeout(timeout))}
}

// get unwraps the response envelope; the transport status is always 200.
func (a *apiClient) get(ctx context.Context, path string, dest any) error {
	var env envelope
	if err := a.client.GetJSON(ctx, a.base+path, &env); err != nil {
		return err
	}
	if env.Status != 200 {
		return fmt.Errorf("%s: %d %s", path, env.Status, env.Message)
	}
	return json.Unmarshal(env.Data, dest)
}

func (a *apiClient) dailyPicks(ctx context.Context) (*models.DailyPicks, error) {
	var dp models.DailyPicks
	if err := a.get(ctx, "/api/v1/picks/daily", &dp); err != nil {
		return nil, err
	}
	return &dp, nil
}

func (a *apiClient) bankrolls(ctx context.Context) (map[models.Pool]models.BankrollState, error) {
	out := make(map[models.Pool]models.BankrollState, len(models.Pools))
	for _, p := range models.Pools {
		var st models.BankrollState
		if err := a.get(ctx, "/api/v1/bankroll/"+string(p), &st); err != nil {
			return nil, err
		}
		out[p] = st
	}
	return out, nil
}

func renderPicks(w io.Writer, dp *models.DailyPicks) error {
	fmt.Fprintf(w, "Daily picks generated %s\n\n", dp.GeneratedAt.Format(time.RFC3339))

	sports := make([]string, 0, len(dp.Singles))
	for s := range dp.Singles {
		sports = append(sports, s)
	}
	sort.Strings(sports)

	singles := tablewriter.NewWriter(w)
	singles.Header("Sport", "Event", "Pick", "Odds", "Value", "Conf", "Stake")
	for _, s := range sports {
		p := dp.Singles[s]
		if err := singles.Append(s, p.EventID, string(p.Pick), num(p.Odds), num(p.Value), pct(p.Confidence), num(dp.SingleStakes[s])); err != nil {
			return err
		}
	}
	if err := singles.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nKombi (stake %s, odds %s)\n", num(dp.KombiStake), num(kombiOdds(dp.Kombi)))
	kombi := tablewriter.NewWriter(w)
	kombi.Header("#", "Sport", "Event", "Pick", "Odds", "Score")
	for i, p := range dp.Kombi {
		if err := kombi.Append(strconv.Itoa(i+1), p.Sport, p.EventID, string(p.Pick), num(p.Odds), num(p.Score)); err != nil {
			return err
		}
	}
	if err := kombi.Render(); err != nil {
		return err
	}

	if len(dp.Live) == 0 {
		fmt.Fprintln(w, "\nNo live picks")
		return nil
	}
	fmt.Fprintln(w, "\nLive")
	live := tablewriter.NewWriter(w)
	live.Header("Sport", "Event", "Pick", "Odds", "Value", "Stake")
	for _, p := range dp.Live {
		if err := live.Append(p.Sport, p.EventID, string(p.Pick), num(p.Odds), num(p.Value), num(dp.LiveStakes[p.EventID])); err != nil {
			return err
		}
	}
	return live.Render()
}

func renderBankrolls(w io.Writer, states map[models.Pool]models.BankrollState) error {
	fmt.Fprintln(w, "\nBankroll")
	t := tablewriter.NewWriter(w)
	t.Header("Pool", "Bankroll", "Peak", "Drawdown", "Risk x")
	for _, p := range models.Pools {
		st, ok := states[p]
		if !ok {
			continue
		}
		if err := t.Append(string(p), num(st.Bankroll), num(st.MaxBankroll), pct(drawdown(st)), num(st.RiskMultiplier)); err != nil {
			return err
		}
	}
	return t.Render()
}

func kombiOdds(picks []models.Pick) float64 {
	if len(picks) == 0 {
		return 0
	}
	odds := 1.0
	for _, p := range picks {
		odds *= p.Odds
	}
	return odds
}

func drawdown(st models.BankrollState) float64 {
	if st.MaxBankroll <= 0 {
		return 0
	}
	return (st.MaxBankroll - st.Bankroll) / st.MaxBankroll
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func pct(v float64) string { return strconv.FormatFloat(v*100, 'f', 1, 64) + "%" }
