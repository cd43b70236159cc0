package viz

import (
	"encoding/json"
	"fmt"

	"github.com/patentstack/patentstack/internal/report"
)

// dataset is one Chart.js dataset in a stacked bar chart.
type dataset struct {
	Label string `json:"label"`
	Data  []int  `json:"data"`
}

// chartData is the JSON payload embedded in the report page.
type chartData struct {
	CategoryLabels []string `json:"categoryLabels"`
	CategoryCounts []int    `json:"categoryCounts"`

	SubcategoryLabels []string `json:"subcategoryLabels"`
	SubcategoryCounts []int    `json:"subcategoryCounts"`

	CompanyLabels   []string  `json:"companyLabels"`
	CompanyDatasets []dataset `json:"companyDatasets"`

	YearLabels []int `json:"yearLabels"`
	YearCounts []int `json:"yearCounts"`

	Total        int `json:"total"`
	Classified   int `json:"classified"`
	Unclassified int `json:"unclassified"`
}

// maxSubcategoryBars keeps the subcategory bar chart readable.
const maxSubcategoryBars = 20

// buildChartData converts a summary into the page's chart payload.
func buildChartData(s *report.Summary) chartData {
	cd := chartData{
		Total:        s.Total,
		Classified:   s.Classified,
		Unclassified: s.Unclassified,
	}

	for _, c := range s.Categories {
		cd.CategoryLabels = append(cd.CategoryLabels, c.Label)
		cd.CategoryCounts = append(cd.CategoryCounts, c.Count)
	}
	if s.Unclassified > 0 {
		cd.CategoryLabels = append(cd.CategoryLabels, "(unclassified)")
		cd.CategoryCounts = append(cd.CategoryCounts, s.Unclassified)
	}

	for i, sc := range s.Subcategories {
		if i >= maxSubcategoryBars {
			break
		}
		cd.SubcategoryLabels = append(cd.SubcategoryLabels, sc.Label)
		cd.SubcategoryCounts = append(cd.SubcategoryCounts, sc.Count)
	}

	// Stacked bars: one dataset per category, one bar per company.
	ct := s.CompanyByCategory
	cd.CompanyLabels = ct.Companies
	for j, category := range ct.Categories {
		ds := dataset{Label: category}
		for i := range ct.Companies {
			ds.Data = append(ds.Data, ct.Counts[i][j])
		}
		cd.CompanyDatasets = append(cd.CompanyDatasets, ds)
	}

	for _, y := range s.Years {
		cd.YearLabels = append(cd.YearLabels, y.Year)
		cd.YearCounts = append(cd.YearCounts, y.Count)
	}

	return cd
}

// toJSON marshals the chart payload for embedding in the template.
func (cd chartData) toJSON() (string, error) {
	data, err := json.Marshal(cd)
	if err != nil {
		return "", fmt.Errorf("marshaling chart data: %w", err)
	}
	return string(data), nil
}
