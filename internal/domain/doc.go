// Package domain models National Weather Service (NWS) NDFD forecasts delivered
// as DWML (Digital Weather Markup Language) and projects them onto an hourly table.
//
// # Data Source
//
// DWML documents come from the NDFD XML REST service
// (https://graphical.weather.gov/xml/), requested in metric units with the
// maxt, mint, temp, appt, rh, wspd, wdir, sky, snow and wx elements.
// Fetching and caching the document is the caller's job; this package starts
// from the document bytes.
//
// # DWML Conventions
//
// Time layouts:
//
//	<time-layout time-coordinate="local" summarization="none">
//	  <layout-key>k-p24h-n7-1</layout-key>
//	  <start-valid-time>2015-08-21T08:00:00-04:00</start-valid-time>
//	  <end-valid-time>2015-08-21T20:00:00-04:00</end-valid-time>
//	  ...
//	</time-layout>
//
//	The key encodes period hours (p24h), interval count (n7) and a sequence
//	number (1). Hourly layouts usually omit end-valid-time.
//
// Parameters:
//
//	<temperature type="maximum" units="Celsius" time-layout="k-p24h-n7-1">
//	  <value>31</value> ...
//	</temperature>
//
//	The i-th <value> belongs to the i-th interval of the referenced layout.
//	Position is the only link between a value and its time; timestamps are
//	never matched. A missing value is written as <value xsi:nil="true"/>.
//
// Weather conditions:
//
//	<weather time-layout="k-p3h-n40-2">
//	  <weather-conditions>
//	    <value coverage="chance" intensity="light" weather-type="rain showers" qualifier="none"/>
//	    <value coverage="slight chance" intensity="none" additive="and" weather-type="thunderstorms" qualifier="none"/>
//	  </weather-conditions>
//	  ...
//
//	One weather-conditions group per interval; each coded value is folded into a
//	short text such as " light SHW 40%, TND 20%" by [ComposeConditions].
//
// # Hourly Table
//
// A [Table] holds a fixed number of one-hour rows starting at a base time.
// Interval start times are bucketed with [Project]; anything before the base
// time or past the window is dropped without error.
package domain
