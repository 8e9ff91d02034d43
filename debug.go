package splice

import (
	"time"

	"github.com/sirupsen/logrus"
)

// debugStats holds per-frame timing metrics.
// Only populated when the engine runs with WithDebug(true).
type debugStats struct {
	seekTime     time.Duration
	clipTime     time.Duration
	overlayTime  time.Duration
	cropTime     time.Duration
	overlayCount int
	liveBuffers  int
}

// debugLog emits timing stats for one frame at debug level.
func debugLog(log *logrus.Entry, t float64, stats debugStats) {
	total := stats.seekTime + stats.clipTime + stats.overlayTime + stats.cropTime
	log.WithFields(logrus.Fields{
		"function":     "composeFrame",
		"time":         t,
		"seek":         stats.seekTime,
		"clips":        stats.clipTime,
		"overlays":     stats.overlayTime,
		"crop":         stats.cropTime,
		"total":        total,
		"overlayCount": stats.overlayCount,
		"liveBuffers":  stats.liveBuffers,
	}).Debug("frame stats")
}
