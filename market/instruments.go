// market/instruments.go
package market

// DefaultUniverse is the instrument set and iteration order used when the
// config does not name one.
var DefaultUniverse = []string{"MSFT", "GOOG", "AAPL", "TSLA"}
