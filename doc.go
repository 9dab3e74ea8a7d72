/*
Package glass stores typed records in a key-value engine that offers sorted
sets and hashes (Redis, or the embedded Bolt and in-memory engines included
here).

We implement:

1. Record types, Go structs whose exported fields are flattened into a
field-bag of name → payload strings (see Mapper).

2. An ordering index per record type, giving stable enumeration order,
ranges and pagination (see Index).

3. A store that keeps the two in sync, running each logical operation as a
single command batch (see Store and Collection).

# Key Layout

For a record type named “mods”:

	mods-index                              sorted set of record ids, scored by rank
	mods:3f1c0e6a9b2d4f5e8a7b6c5d4e3f2a1b   hash of field name → payload

Ids are rendered as 32 lowercase hex digits without hyphens. A new id gets
rank = cardinality + 1.

# Fields

Strings, bools, numbers and []byte are stored as their text form.
TextMarshalers (enums, ids, times) are stored as their text. Everything else
is serialized with the store's Codec (JSON by default). Nil pointers, slices
and maps are not stored at all, and absent fields decode to their zero value.

Decoding is best-effort: a payload that fails to parse leaves its field at the
zero value and does not prevent the rest of the record from loading.

# Batches

Insert reads the index cardinality, then submits {ZADD, HSET...} as one batch.
Remove reads the bag's field names, then submits {ZREM, HDEL...}. Edit is a
single batch of HSETs. Page fetches the id window together with the last id,
then all bags in one batch.

Appends are not atomic with respect to each other: the cardinality read and
the ZADD are separate round trips.
*/
package glass
