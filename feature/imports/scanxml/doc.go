// Package scanxml reads network scan results in the nmap XML format, as
// written by nmap and masscan.
//
// The root element must be <nmaprun> with a scanner attribute of nmap or
// masscan. Documents that declare a DTD are refused outright. Each open port
// of each live host becomes one record; closed and filtered ports are
// dropped. Hosts are numbered from 1 in document order and that number is the
// locator of their records and warnings.
package scanxml
