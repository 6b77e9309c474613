package meta

// The four fixed catalog templates. Placeholders are filled with escaped
// string literals only; no user-entered SQL ever reaches these.

const tableInfoSQL = `
select
  c.oid::int8 as id,
  nc.nspname as schema,
  c.relname as name,
  c.reltuples::int8 as rows_estimate,
  obj_description(c.oid) as comment
from pg_class c
join pg_namespace nc on nc.oid = c.relnamespace
where nc.nspname = %s
  and c.relname = %s
  and c.relkind in ('r', 'p')
  and not pg_is_other_temp_schema(nc.oid)
`

const columnsSQL = `
select
  c.column_name as name,
  c.ordinal_position as position,
  lower(c.data_type) as data_type,
  c.udt_name as format,
  c.is_nullable = 'YES' as is_nullable,
  c.is_identity = 'YES' as is_identity,
  c.identity_generation as identity_generation,
  c.column_default as default_value,
  col_description((quote_ident(c.table_schema) || '.' || quote_ident(c.table_name))::regclass, c.ordinal_position) as comment,
  pg_catalog.has_column_privilege(
    (quote_ident(c.table_schema) || '.' || quote_ident(c.table_name))::regclass,
    c.column_name, 'UPDATE'
  ) as is_updatable,
  coalesce((
    select array_agg(e.enumlabel order by e.enumsortorder)
    from pg_enum e
    join pg_type t on t.oid = e.enumtypid
    where t.typname = ltrim(c.udt_name, '_')
  ), '{}') as enums
from information_schema.columns c
where c.table_schema = %s
  and c.table_name = %s
  and c.table_schema not like 'pg\_temp\_%%'
order by c.ordinal_position
`

const primaryKeysSQL = `
select
  tc.table_schema as schema,
  tc.table_name as name,
  kcu.column_name as column_name
from information_schema.table_constraints tc
join information_schema.key_column_usage kcu
  on kcu.constraint_name = tc.constraint_name
  and kcu.table_schema = tc.table_schema
where tc.constraint_type = 'PRIMARY KEY'
  and tc.table_schema = %s
  and tc.table_name = %s
order by kcu.ordinal_position
`

const relationshipsSQL = `
select
  tc.constraint_name as constraint_name,
  kcu.table_schema as source_schema,
  kcu.table_name as source_table,
  kcu.column_name as source_column,
  ccu.table_schema as target_schema,
  ccu.table_name as target_table,
  ccu.column_name as target_column
from information_schema.table_constraints tc
join information_schema.key_column_usage kcu
  on kcu.constraint_name = tc.constraint_name
  and kcu.table_schema = tc.table_schema
join information_schema.constraint_column_usage ccu
  on ccu.constraint_name = tc.constraint_name
  and ccu.constraint_schema = tc.table_schema
where tc.constraint_type = 'FOREIGN KEY'
  and tc.table_schema = %s
  and tc.table_name = %s
order by tc.constraint_name, kcu.column_name
`
