package chat

import (
	"fmt"

	"autofilter-bot/internal/model"
	"autofilter-bot/internal/pkg/format"
	"autofilter-bot/internal/search"
)

// ResultKeyboard renders one result page as inline rows: one button per
// file, a navigation row, and a tier-switch row marking the active tier.
func ResultKeyboard(res search.Result, tier model.Tier, requesterID int64, sessionKey string, offset, pageSize int) [][]Button {
	rows := make([][]Button, 0, len(res.Files)+3)

	for _, f := range res.Files {
		rows = append(rows, []Button{{
			Text: fmt.Sprintf("[%s] %s", format.HumanSize(f.FileSize), f.FileName),
			Data: FileCallback(f.ID),
		}})
	}

	if nav := navRow(res, requesterID, sessionKey, offset, pageSize); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tierRow(tier, requesterID, sessionKey))
	rows = append(rows, []Button{{Text: "Close", Data: ActionClose}})
	return rows
}

func navRow(res search.Result, requesterID int64, sessionKey string, offset, pageSize int) []Button {
	if pageSize <= 0 || res.Total == 0 {
		return nil
	}

	var row []Button
	if offset > 0 {
		prev := offset - pageSize
		if prev < 0 {
			prev = 0
		}
		row = append(row, Button{
			Text: "Prev",
			Data: NavCallback{Action: ActionPrev, RequesterID: requesterID, SessionKey: sessionKey, Offset: prev}.Encode(),
		})
	}

	page := offset/pageSize + 1
	totalPages := int((res.Total + int64(pageSize) - 1) / int64(pageSize))
	row = append(row, Button{
		Text: fmt.Sprintf("%d/%d", page, totalPages),
		Data: ActionPages,
	})

	if res.HasMore {
		row = append(row, Button{
			Text: "Next",
			Data: NavCallback{Action: ActionNext, RequesterID: requesterID, SessionKey: sessionKey, Offset: res.NextOffset}.Encode(),
		})
	}
	return row
}

func tierRow(active model.Tier, requesterID int64, sessionKey string) []Button {
	row := make([]Button, 0, len(model.Tiers()))
	for _, t := range model.Tiers() {
		label := string(t)
		if t == active {
			label = "• " + label + " •"
		}
		row = append(row, Button{
			Text: label,
			Data: NavCallback{Action: ActionTier, RequesterID: requesterID, SessionKey: sessionKey, Tier: t}.Encode(),
		})
	}
	return row
}
