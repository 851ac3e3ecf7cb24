/*

Package base provides base functions for dsplit.

* Seeded Sampling

Subpackages provide JSON encoding (base/json) and logging (base/log).

*/
package base
