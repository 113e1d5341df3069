/*
Package line models the engine's compact action-string notation ("lines").

A line such as "r:0:c:b30:c:c" is a path through the game tree. It starts with the
root marker ("r:0", the preflop segment of a postflop tree) followed by colon
separated action tokens. Streets are not delimited explicitly: a street closes when a
check or call answers the previous action (check-check, bet-call). Node identifiers
additionally carry the dealt card as a token at each street boundary
("r:0:c:b30:c:Ac:c").

Token classification is data driven. A Grammar holds an ordered table of Rules that
map a token pattern to an action class; the parser and the serializer are one generic
routine over that table. Adding a token form means adding a Rule.

# Views

  - String: the raw text, byte-for-byte what was parsed.
  - Actions: the flat action sequence (root included).
  - StreetsAsActions / StreetsAsLines: the sequence grouped by street segment.

Lines compare with Equal. They deliberately have no ordering.
*/
package line
