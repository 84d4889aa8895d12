package selection

import (
	"bytes"
	"encoding/csv"
	"sort"

	"github.com/cantine/cantine/pkg/calweek"
	log "github.com/sirupsen/logrus"
)

// CsvRenderer renders a week's selections as a user-by-weekday matrix, one
// row per user and one column per weekday, cells holding the chosen meal.
type CsvRenderer struct {
}

func NewCsvRenderer() *CsvRenderer {
	return &CsvRenderer{}
}

func (r *CsvRenderer) Render(weekKey string, details []SelectionDetails) (string, error) {
	weekdays := calweek.Weekdays()

	header := make([]string, 0, len(weekdays)+1)
	header = append(header, "Semaine "+weekKey)
	header = append(header, weekdays[:]...)

	byUser := make(map[string]map[string]string)
	for _, d := range details {
		if byUser[d.UserName] == nil {
			byUser[d.UserName] = make(map[string]string)
		}
		byUser[d.UserName][d.DayName] = d.MealName
	}
	userNames := make([]string, 0, len(byUser))
	for name := range byUser {
		userNames = append(userNames, name)
	}
	sort.Strings(userNames)

	data := make([][]string, 0, len(userNames)+1)
	data = append(data, header)
	for _, name := range userNames {
		row := make([]string, 0, len(weekdays)+1)
		row = append(row, name)
		for _, day := range weekdays {
			row = append(row, byUser[name][day])
		}
		data = append(data, row)
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return b.String(), nil
}
