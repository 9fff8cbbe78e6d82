package cli

// RunWithWriter is exported for testing
var RunWithWriter = run

// GetIndexConfig is exported for testing
var GetIndexConfig = getIndexConfig

// ParseProbabilityList is exported for testing
var ParseProbabilityList = parseProbabilityList

// ParseProbabilityJSON is exported for testing
var ParseProbabilityJSON = parseProbabilityJSON
