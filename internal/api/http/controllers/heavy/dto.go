package heavy

import (
	"fmt"

	"heavyCalc/internal/domain"
)

// formatResult — текст ответа 200: попадание или промах.
func formatResult(res *domain.HeavyResult) string {
	if res.Source == domain.SourceCache {
		return fmt.Sprintf("[CACHE HIT] Result: %s (PID: %d)\n", res.Value, res.ServedBy)
	}
	return fmt.Sprintf("[CACHE MISS] Calculated: %s (PID: %d via Worker Thread)\n", res.Value, res.ServedBy)
}
