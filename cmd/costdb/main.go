// costdb стандартизирует закупочные заказы, считает аналитику цен и ищет ценовые аномалии.
//
// Использование:
//
//	costdb run [--from STAGE]
//	costdb serve [--in-process]
//	costdb validate FILE
//	costdb generate [--rows N] [--seed S] [--out FILE]
//	costdb export [--out FILE.xlsx]

// @title Procurement Cost Intelligence API
// @version 1.0
// @description Standardized purchase orders, cost analytics and price anomalies.

// @host localhost:5000
// @BasePath /
// @schemes http

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
