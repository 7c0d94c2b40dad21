// Package coinfolio computes realized and unrealized profit and loss for
// cryptocurrency holdings using strict FIFO lot accounting, and reconciles
// the FIFO-implied balance against the balance the exchange actually
// reports.
//
// The package is a pure calculation core: it owns no network or storage
// resources and holds no state between calls. Trade records, transfer
// records, balances and prices are supplied by a collaborator implementing
// the Exchange interface (the bitvavo subpackage provides one); results are
// plain values intended for direct serialization.
//
// All monetary and quantity arithmetic is performed on arbitrary-precision
// decimals parsed from the exchange's exact string representations. Binary
// floating point never enters a calculation, so results are reproducible to
// the last digit over arbitrarily long trade histories.
package coinfolio
