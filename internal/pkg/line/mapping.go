package line

// Raw formats seen on the odds site (data-o attributes, odds="..." row attributes, cell text):
//
//   "0.5", "-1.25", "+0.75"   plain signed number
//   "0/0.5", "-0.5/1"         split (quarter) line, mean of both legs
//   "-0/0.5"                  split line whose sign is carried only by the leading "-"
//   "2.5/3"                   goal line split
//   "-", "?", "", "N/A"       no line
//
// A split leg without its own sign inherits the sign of the line: "-0.5/1" is -0.75 and
// "-0/0.5" is -0.25. Both corrections are applied as separate checks because the site emits
// both shapes.
