package timescaledb

const createTableSQL = `
CREATE TABLE IF NOT EXISTS cloudwatch (
    time timestamp WITH TIME ZONE NOT NULL,
    stationname text NULL,
    stationtype text NULL,
    rawskytemp float4 NULL,
    skytemp float4 NULL,
    ambienttemp float4 NULL,
    cloudstate int NULL,
    cloudstatename text NULL,
    windspeed float4 NULL,
    rainfrequency float4 NULL,
    brightness float4 NULL,
    rainsensortemp float4 NULL,
    heaterpwm float4 NULL,
    solarelevation float4 NULL
);`

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb;`

const createHypertableSQL = `SELECT create_hypertable('cloudwatch', 'time', if_not_exists => true);`

const create1mViewSQL = `
CREATE MATERIALIZED VIEW IF NOT EXISTS cloudwatch_1m
WITH (timescaledb.continuous) AS
SELECT
    time_bucket('1 minute', time) AS bucket,
    stationname,
    max(stationtype) AS stationtype,
    avg(rawskytemp) AS rawskytemp,
    avg(skytemp) AS skytemp,
    min(skytemp) AS min_skytemp,
    max(skytemp) AS max_skytemp,
    avg(ambienttemp) AS ambienttemp,
    max(cloudstate) AS cloudstate,
    avg(windspeed) AS windspeed,
    max(windspeed) AS max_windspeed,
    min(rainfrequency) AS rainfrequency,
    avg(brightness) AS brightness,
    avg(rainsensortemp) AS rainsensortemp,
    avg(heaterpwm) AS heaterpwm,
    avg(solarelevation) AS solarelevation
FROM cloudwatch
GROUP BY bucket, stationname
WITH NO DATA;`

const create1hViewSQL = `
CREATE MATERIALIZED VIEW IF NOT EXISTS cloudwatch_1h
WITH (timescaledb.continuous) AS
SELECT
    time_bucket('1 hour', time) AS bucket,
    stationname,
    max(stationtype) AS stationtype,
    avg(rawskytemp) AS rawskytemp,
    avg(skytemp) AS skytemp,
    min(skytemp) AS min_skytemp,
    max(skytemp) AS max_skytemp,
    avg(ambienttemp) AS ambienttemp,
    max(cloudstate) AS cloudstate,
    avg(windspeed) AS windspeed,
    max(windspeed) AS max_windspeed,
    min(rainfrequency) AS rainfrequency,
    avg(brightness) AS brightness,
    avg(rainsensortemp) AS rainsensortemp,
    avg(heaterpwm) AS heaterpwm,
    avg(solarelevation) AS solarelevation
FROM cloudwatch
GROUP BY bucket, stationname
WITH NO DATA;`

const addAggregationPolicy1mSQL = `SELECT add_continuous_aggregate_policy('cloudwatch_1m', start_offset => INTERVAL '5 minutes', end_offset => INTERVAL '1 minute', schedule_interval => INTERVAL '1 minute', if_not_exists => true);`

const addAggregationPolicy1hSQL = `SELECT add_continuous_aggregate_policy('cloudwatch_1h', start_offset => INTERVAL '3 hours', end_offset => INTERVAL '1 hour', schedule_interval => INTERVAL '15 minutes', if_not_exists => true);`
