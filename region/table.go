/*
Copyright © 2024 the ELCI authors.
This file is part of ELCI.

ELCI is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ELCI is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ELCI.  If not, see <http://www.gnu.org/licenses/>.
*/

package region

// defaultTable is the region table bundled with the program, in TOML format.
const defaultTable = `# Balancing authorities and the regions they belong to.
us = "US"

[[ferc]]
code = "CAISO"

[[ferc]]
code = "ERCOT"

[[ferc]]
code = "ISO-NE"

[[ferc]]
code = "MISO"

[[ferc]]
code = "NYISO"

[[ferc]]
code = "PJM"

[[ferc]]
code = "SPP"

[[ferc]]
code = "Northwest"

[[ferc]]
code = "Southeast"

[[ferc]]
code = "Southwest"

[[eia]]
code = "CAL"

[[eia]]
code = "CAR"

[[eia]]
code = "CENT"

[[eia]]
code = "FLA"

[[eia]]
code = "MIDA"

[[eia]]
code = "MIDW"

[[eia]]
code = "NE"

[[eia]]
code = "NY"

[[eia]]
code = "NW"

[[eia]]
code = "SE"

[[eia]]
code = "SW"

[[eia]]
code = "TEN"

[[eia]]
code = "TEX"

[[eia]]
code = "US48"

[[ba]]
code = "AEC"
country = "US"
ferc = "Southeast"
eia = "SE"
interconnect = "Eastern"
states = ["AL"]

[[ba]]
code = "AECI"
country = "US"
ferc = "MISO"
eia = "MIDW"
interconnect = "Eastern"
states = ["MO", "IA"]

[[ba]]
code = "AVA"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["WA", "ID"]

[[ba]]
code = "AVRN"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["OR", "WA"]

[[ba]]
code = "AZPS"
country = "US"
ferc = "Southwest"
eia = "SW"
interconnect = "Western"
states = ["AZ"]

[[ba]]
code = "BANC"
country = "US"
ferc = "CAISO"
eia = "CAL"
interconnect = "Western"
states = ["CA"]

[[ba]]
code = "BPAT"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["WA", "OR", "ID", "MT"]

[[ba]]
code = "CHPD"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["WA"]

[[ba]]
code = "CISO"
country = "US"
ferc = "CAISO"
eia = "CAL"
interconnect = "Western"
states = ["CA"]

[[ba]]
code = "CPLE"
country = "US"
ferc = "Southeast"
eia = "CAR"
interconnect = "Eastern"
states = ["NC", "SC"]

[[ba]]
code = "CPLW"
country = "US"
ferc = "Southeast"
eia = "CAR"
interconnect = "Eastern"
states = ["NC"]

[[ba]]
code = "DEAA"
country = "US"
ferc = "Southwest"
eia = "SW"
interconnect = "Western"
states = ["AZ"]

[[ba]]
code = "DOPD"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["WA"]

[[ba]]
code = "DUK"
country = "US"
ferc = "Southeast"
eia = "CAR"
interconnect = "Eastern"
states = ["NC", "SC"]

[[ba]]
code = "EEI"
country = "US"
ferc = "MISO"
eia = "MIDW"
interconnect = "Eastern"
states = ["IL"]

[[ba]]
code = "EPE"
country = "US"
ferc = "Southwest"
eia = "SW"
interconnect = "Western"
states = ["TX", "NM"]

[[ba]]
code = "ERCO"
country = "US"
ferc = "ERCOT"
eia = "TEX"
interconnect = "ERCOT"
states = ["TX"]

[[ba]]
code = "FMPP"
country = "US"
ferc = "Southeast"
eia = "FLA"
interconnect = "Eastern"
states = ["FL"]

[[ba]]
code = "FPC"
country = "US"
ferc = "Southeast"
eia = "FLA"
interconnect = "Eastern"
states = ["FL"]

[[ba]]
code = "FPL"
country = "US"
ferc = "Southeast"
eia = "FLA"
interconnect = "Eastern"
states = ["FL"]

[[ba]]
code = "GCPD"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["WA"]

[[ba]]
code = "GLHB"
country = "US"
ferc = "MISO"
eia = "MIDW"
interconnect = "Eastern"
states = ["IL"]

[[ba]]
code = "GRID"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["OR"]

[[ba]]
code = "GRIF"
country = "US"
ferc = "Southwest"
eia = "SW"
interconnect = "Western"
states = ["AZ"]

[[ba]]
code = "GRMA"
country = "US"
ferc = "Southwest"
eia = "SW"
interconnect = "Western"
states = ["AZ"]

[[ba]]
code = "GVL"
country = "US"
ferc = "Southeast"
eia = "FLA"
interconnect = "Eastern"
states = ["FL"]

[[ba]]
code = "GWA"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["MT"]

[[ba]]
code = "HGMA"
country = "US"
ferc = "Southwest"
eia = "SW"
interconnect = "Western"
states = ["AZ"]

[[ba]]
code = "HST"
country = "US"
ferc = "Southeast"
eia = "FLA"
interconnect = "Eastern"
states = ["FL"]

[[ba]]
code = "IID"
country = "US"
ferc = "CAISO"
eia = "CAL"
interconnect = "Western"
states = ["CA"]

[[ba]]
code = "IPCO"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["ID", "OR"]

[[ba]]
code = "ISNE"
country = "US"
ferc = "ISO-NE"
eia = "NE"
interconnect = "Eastern"
states = ["CT", "MA", "ME", "NH", "RI", "VT"]

[[ba]]
code = "JEA"
country = "US"
ferc = "Southeast"
eia = "FLA"
interconnect = "Eastern"
states = ["FL"]

[[ba]]
code = "LDWP"
country = "US"
ferc = "CAISO"
eia = "CAL"
interconnect = "Western"
states = ["CA"]

[[ba]]
code = "LGEE"
country = "US"
ferc = "MISO"
eia = "MIDW"
interconnect = "Eastern"
states = ["KY"]

[[ba]]
code = "MISO"
country = "US"
ferc = "MISO"
eia = "MIDW"
interconnect = "Eastern"
states = ["AR", "IA", "IL", "IN", "KY", "LA", "MI", "MN", "MO", "MS", "MT", "ND", "SD", "TX", "WI"]

[[ba]]
code = "NEVP"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["NV"]

[[ba]]
code = "NSB"
country = "US"
ferc = "Southeast"
eia = "FLA"
interconnect = "Eastern"
states = ["FL"]

[[ba]]
code = "NWMT"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["MT"]

[[ba]]
code = "NYIS"
country = "US"
ferc = "NYISO"
eia = "NY"
interconnect = "Eastern"
states = ["NY"]

[[ba]]
code = "OVEC"
country = "US"
ferc = "PJM"
eia = "MIDA"
interconnect = "Eastern"
states = ["OH", "IN"]

[[ba]]
code = "PACE"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["UT", "WY", "ID"]

[[ba]]
code = "PACW"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["OR", "WA", "CA"]

[[ba]]
code = "PGE"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["OR"]

[[ba]]
code = "PJM"
country = "US"
ferc = "PJM"
eia = "MIDA"
interconnect = "Eastern"
states = ["DC", "DE", "IL", "IN", "KY", "MD", "MI", "NC", "NJ", "OH", "PA", "TN", "VA", "WV"]

[[ba]]
code = "PNM"
country = "US"
ferc = "Southwest"
eia = "SW"
interconnect = "Western"
states = ["NM"]

[[ba]]
code = "PSCO"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["CO"]

[[ba]]
code = "PSEI"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["WA"]

[[ba]]
code = "SC"
country = "US"
ferc = "Southeast"
eia = "CAR"
interconnect = "Eastern"
states = ["SC"]

[[ba]]
code = "SCEG"
country = "US"
ferc = "Southeast"
eia = "CAR"
interconnect = "Eastern"
states = ["SC"]

[[ba]]
code = "SCL"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["WA"]

[[ba]]
code = "SEC"
country = "US"
ferc = "Southeast"
eia = "FLA"
interconnect = "Eastern"
states = ["FL"]

[[ba]]
code = "SEPA"
country = "US"
ferc = "Southeast"
eia = "SE"
interconnect = "Eastern"
states = ["GA", "SC"]

[[ba]]
code = "SOCO"
country = "US"
ferc = "Southeast"
eia = "SE"
interconnect = "Eastern"
states = ["AL", "FL", "GA", "MS"]

[[ba]]
code = "SPA"
country = "US"
ferc = "SPP"
eia = "CENT"
interconnect = "Eastern"
states = ["AR", "MO", "OK"]

[[ba]]
code = "SRP"
country = "US"
ferc = "Southwest"
eia = "SW"
interconnect = "Western"
states = ["AZ"]

[[ba]]
code = "SWPP"
country = "US"
ferc = "SPP"
eia = "CENT"
interconnect = "Eastern"
states = ["AR", "IA", "KS", "LA", "MN", "MO", "MT", "ND", "NE", "NM", "OK", "SD", "TX", "WY"]

[[ba]]
code = "TAL"
country = "US"
ferc = "Southeast"
eia = "FLA"
interconnect = "Eastern"
states = ["FL"]

[[ba]]
code = "TEC"
country = "US"
ferc = "Southeast"
eia = "FLA"
interconnect = "Eastern"
states = ["FL"]

[[ba]]
code = "TEPC"
country = "US"
ferc = "Southwest"
eia = "SW"
interconnect = "Western"
states = ["AZ"]

[[ba]]
code = "TIDC"
country = "US"
ferc = "CAISO"
eia = "CAL"
interconnect = "Western"
states = ["CA"]

[[ba]]
code = "TPWR"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["WA"]

[[ba]]
code = "TVA"
country = "US"
ferc = "Southeast"
eia = "TEN"
interconnect = "Eastern"
states = ["AL", "GA", "KY", "MS", "NC", "TN", "VA"]

[[ba]]
code = "WACM"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["CO", "NE", "WY"]

[[ba]]
code = "WALC"
country = "US"
ferc = "Southwest"
eia = "SW"
interconnect = "Western"
states = ["AZ", "CA", "NV"]

[[ba]]
code = "WAUW"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["MT", "WY"]

[[ba]]
code = "WWA"
country = "US"
ferc = "Northwest"
eia = "NW"
interconnect = "Western"
states = ["MT"]

[[ba]]
code = "YAD"
country = "US"
ferc = "Southeast"
eia = "CAR"
interconnect = "Eastern"
states = ["NC"]

[[ba]]
code = "AESO"
country = "CAN"
province = "Alberta"
interconnect = "Western"

[[ba]]
code = "BCHA"
country = "CAN"
province = "British Columbia"
interconnect = "Western"

[[ba]]
code = "HQT"
country = "CAN"
province = "Quebec"
interconnect = "Eastern"

[[ba]]
code = "IESO"
country = "CAN"
province = "Ontario"
interconnect = "Eastern"

[[ba]]
code = "MHEB"
country = "CAN"
province = "Manitoba"
interconnect = "Eastern"

[[ba]]
code = "NBSO"
country = "CAN"
province = "New Brunswick"
interconnect = "Eastern"

[[ba]]
code = "SPC"
country = "CAN"
province = "Saskatchewan"
interconnect = "Eastern"

[[ba]]
code = "CEN"
country = "MEX"
interconnect = "Western"

[[ba]]
code = "CFE"
country = "MEX"
interconnect = "ERCOT"

# Direct-current ties where trade between interconnects is allowed.
[[tie]]
a = "ERCO"
b = "SWPP"

[[tie]]
a = "EPE"
b = "SWPP"

[[tie]]
a = "NWMT"
b = "SWPP"

[[tie]]
a = "PNM"
b = "SWPP"

[[tie]]
a = "PSCO"
b = "SWPP"

[[tie]]
a = "WACM"
b = "SWPP"

[[tie]]
a = "WAUW"
b = "SWPP"

[[tie]]
a = "AESO"
b = "SPC"
`
