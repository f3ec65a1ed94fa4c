package settlement

import (
	"encoding/csv"
	"os"
	"strconv"
)

// WriteTradesCSV writes a trade ledger to path, one row per bid.
func WriteTradesCSV(path string, result Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"id",
		"hour",
		"type",
		"bid_price",
		"quantity",
		"executed",
		"execution_price",
		"settlement_price",
		"profit",
		"reason",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, t := range result.Trades {
		row := []string{
			t.ID,
			strconv.Itoa(t.Hour),
			string(t.Side),
			fmtFloat(t.Price),
			fmtFloat(t.Quantity),
			strconv.FormatBool(t.Executed),
			fmtFloat(t.ExecutionPrice),
			fmtFloat(t.SettlementPrice),
			fmtFloat(t.Profit),
			t.Reason,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
