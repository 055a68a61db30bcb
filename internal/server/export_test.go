package server

var FuzzyFilter = fuzzyFilter
