// Command cashflow is the terminal client for the forecasting engine.
package main

import "github.com/warp/cashflow-engine/internal/cli"

func main() {
	cli.Execute()
}
