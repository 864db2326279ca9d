package highlight

// FitLineCount exposes lexer line-count reconciliation for tests.
var FitLineCount = fitLineCount
