// Package privacy derives the private device addresses used by LE privacy.
//
// A resolvable private address (RPA) is hash || prand, where prand carries the
// 0b01 tag in its two most significant bits and hash = ah(IRK, prand). Anyone
// holding the IRK can recognise the address; nobody else can link two of
// them. A non-resolvable private address (NRPA) is 46 random bits under the
// 0b00 tag. Vol 3, Part C, 10.8 and Vol 3, Part H, 2.2.2.
package privacy
