package sqlinline

const QSelectBrandProfile = `--sql 3c1f9b7e-52a4-4d0e-9c6b-0f2a7d81e4b5
select document
from brand_profiles
where profile_key = $1::text
limit 1;
`

const QUpsertBrandProfile = `--sql b94e2d10-6a7f-4c38-8e15-d27c0a9f3b61
insert into brand_profiles (profile_key, document, created_at, updated_at)
values ($1::text, $2::jsonb, now(), now())
on conflict (profile_key) do update set
    document = excluded.document,
    updated_at = now();
`

const QCreateBrandProfilesTable = `--sql 5e0a7c42-91d3-4b6f-a8e2-7f14c9d0b3a6
create table if not exists brand_profiles (
    profile_key text primary key,
    document jsonb not null,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
`
