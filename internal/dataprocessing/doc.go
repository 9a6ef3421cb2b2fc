// Package dataprocessing implements the dashboard's data pipeline: parsing an
// uploaded spreadsheet into a raw table, validating its schema, building the
// typed Dataset (synthesizing optional columns), filtering by the user's
// festival/sentiment selection and computing the chart aggregates.
//
// The pipeline is strictly one-directional:
//
//	Parse → Validate → Build → Filter → Aggregate
//
// Every stage after Build is a pure function over the Dataset; nothing here
// holds state between requests.
package dataprocessing
